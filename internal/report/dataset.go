package report

import "time"

// SalesRecord is one sale as shown in the sales report.
type SalesRecord struct {
	ID       uint      `json:"id"`
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
	Items    int       `json:"items"`
	Customer string    `json:"customer"`
}

// InventoryRecord is one product line in the inventory report.
type InventoryRecord struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Stock        int    `json:"stock"`
	ReorderLevel int    `json:"reorder_level"`
	Status       string `json:"status"`
}

// MemberRecord is one member row in the member activity report.
type MemberRecord struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	JoinDate  time.Time `json:"join_date"`
	Purchases int       `json:"purchases"`
	Points    int       `json:"points"`
}

// CreditRecord is one member's credit position. A zero LastPayment means the
// member never paid.
type CreditRecord struct {
	ID          uint      `json:"id"`
	Member      string    `json:"member"`
	Balance     float64   `json:"balance"`
	Limit       float64   `json:"limit"`
	LastPayment time.Time `json:"last_payment"`
	Status      string    `json:"status"`
}

// Labels used by the inventory and credit datasets.
const (
	StatusLowStock     = "Low Stock"
	StatusInStock      = "In Stock"
	StatusGoodStanding = "Good Standing"
	StatusNearLimit    = "Near Limit"
	StatusPaidInFull   = "Paid in Full"

	CustomerWalkIn = "Walk-in"
)

// Dataset bundles the four record sets a report can be built from.
type Dataset struct {
	Sales     []SalesRecord
	Inventory []InventoryRecord
	Members   []MemberRecord
	Credit    []CreditRecord
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// SampleDataset returns the fixed demonstration records.
func SampleDataset() Dataset {
	return Dataset{
		Sales: []SalesRecord{
			{ID: 1, Date: day(2023, time.May, 1), Amount: 1250.75, Items: 15, Customer: CustomerWalkIn},
			{ID: 2, Date: day(2023, time.May, 2), Amount: 876.5, Items: 8, Customer: "Member #1024"},
			{ID: 3, Date: day(2023, time.May, 3), Amount: 1432.25, Items: 12, Customer: "Member #1056"},
			{ID: 4, Date: day(2023, time.May, 4), Amount: 965.0, Items: 10, Customer: CustomerWalkIn},
			{ID: 5, Date: day(2023, time.May, 5), Amount: 2145.3, Items: 22, Customer: "Member #1078"},
		},
		Inventory: []InventoryRecord{
			{ID: 1, Name: "Organic Apples", Category: "Produce", Stock: 45, ReorderLevel: 10, Status: StatusInStock},
			{ID: 2, Name: "Whole Milk", Category: "Dairy", Stock: 12, ReorderLevel: 15, Status: StatusLowStock},
			{ID: 3, Name: "Whole Wheat Bread", Category: "Bakery", Stock: 30, ReorderLevel: 8, Status: StatusInStock},
			{ID: 4, Name: "Free Range Eggs", Category: "Dairy", Stock: 24, ReorderLevel: 12, Status: StatusInStock},
			{ID: 5, Name: "Organic Bananas", Category: "Produce", Stock: 5, ReorderLevel: 10, Status: StatusLowStock},
		},
		Members: []MemberRecord{
			{ID: 1, Name: "John Doe", Email: "john@example.com", JoinDate: day(2023, time.January, 15), Purchases: 24, Points: 240},
			{ID: 2, Name: "Jane Smith", Email: "jane@example.com", JoinDate: day(2023, time.February, 20), Purchases: 18, Points: 180},
			{ID: 3, Name: "Robert Johnson", Email: "robert@example.com", JoinDate: day(2023, time.March, 10), Purchases: 32, Points: 320},
			{ID: 4, Name: "Emily Davis", Email: "emily@example.com", JoinDate: day(2023, time.April, 5), Purchases: 15, Points: 150},
			{ID: 5, Name: "Michael Wilson", Email: "michael@example.com", JoinDate: day(2023, time.May, 12), Purchases: 28, Points: 280},
		},
		Credit: []CreditRecord{
			{ID: 1, Member: "John Doe", Balance: 450.0, Limit: 1000.0, LastPayment: day(2023, time.April, 28), Status: StatusGoodStanding},
			{ID: 2, Member: "Jane Smith", Balance: 750.0, Limit: 1000.0, LastPayment: day(2023, time.April, 15), Status: StatusGoodStanding},
			{ID: 3, Member: "Robert Johnson", Balance: 950.0, Limit: 1000.0, LastPayment: day(2023, time.April, 10), Status: StatusNearLimit},
			{ID: 4, Member: "Emily Davis", Balance: 200.0, Limit: 500.0, LastPayment: day(2023, time.April, 22), Status: StatusGoodStanding},
			{ID: 5, Member: "Michael Wilson", Balance: 0.0, Limit: 1000.0, LastPayment: day(2023, time.April, 30), Status: StatusPaidInFull},
		},
	}
}
