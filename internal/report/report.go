package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind selects which report to build.
type Kind string

const (
	KindSales     Kind = "sales"
	KindInventory Kind = "inventory"
	KindMembers   Kind = "members"
	KindCredit    Kind = "credit"
)

// Kinds lists the report kinds in menu order.
var Kinds = []Kind{KindSales, KindInventory, KindMembers, KindCredit}

// ErrUnknownKind is returned for a report kind that does not exist.
var ErrUnknownKind = errors.New("unknown report type")

// ErrUnknownTimeRange is returned for an unsupported time range.
var ErrUnknownTimeRange = errors.New("unknown time range")

// TimeRanges lists the accepted time range values.
var TimeRanges = []string{"day", "week", "month", "quarter", "year", "custom"}

const (
	dateLayout      = "2006-01-02"
	longDateLayout  = "January 2, 2006"
	clockLayout     = "03:04 PM"
	defaultRange    = "week"
	rowClassLow     = "low-stock"
	rowClassNearLim = "near-limit"
)

// ParseKind validates a report kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindSales, KindInventory, KindMembers, KindCredit:
		return k, nil
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

// Options controls report metadata.
type Options struct {
	TimeRange string
	Now       time.Time
	Reference string
}

// MetaItem is one label/value pair in the report header box.
type MetaItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Card is one summary card.
type Card struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Table is the report's data table. RowClasses has one entry per row,
// empty when the row carries no highlight.
type Table struct {
	Title      string     `json:"title"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
	RowClasses []string   `json:"row_classes"`
	Footer     []string   `json:"footer,omitempty"`
}

// Section is a titled block of analysis sentences.
type Section struct {
	Heading string   `json:"heading"`
	Lines   []string `json:"lines"`
}

// Report is the fully derived content shared by the on-page preview and the
// printable document.
type Report struct {
	Kind          Kind        `json:"kind"`
	Title         string      `json:"title"`
	Reference     string      `json:"reference,omitempty"`
	GeneratedAt   time.Time   `json:"generated_at"`
	Meta          []MetaItem  `json:"meta"`
	Cards         []Card      `json:"cards"`
	Table         Table       `json:"table"`
	AnalysisTitle string      `json:"analysis_title,omitempty"`
	Analysis      []Section   `json:"analysis"`
	Summary       interface{} `json:"summary"`
}

// GeneratedLabel is the "January 2, 2006 at 03:04 PM" stamp.
func (r *Report) GeneratedLabel() string {
	return r.GeneratedAt.Format(longDateLayout) + " at " + r.GeneratedAt.Format(clockLayout)
}

// TimeRangeLabel title-cases a time range value.
func TimeRangeLabel(timeRange string) string {
	return cases.Title(language.English).String(timeRange)
}

// Build derives the report of the given kind from ds.
func Build(kind Kind, ds Dataset, opts Options) (*Report, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.TimeRange == "" {
		opts.TimeRange = defaultRange
	}
	if !validRange(opts.TimeRange) {
		return nil, errors.Wrapf(ErrUnknownTimeRange, "%q", opts.TimeRange)
	}

	r := &Report{Kind: kind, Reference: opts.Reference, GeneratedAt: opts.Now}

	switch kind {
	case KindSales:
		buildSales(r, ds.Sales, opts)
	case KindInventory:
		buildInventory(r, ds.Inventory)
	case KindMembers:
		buildMembers(r, ds.Members, opts)
	case KindCredit:
		buildCredit(r, ds.Credit, opts.Now)
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
	}

	r.Meta = append(r.Meta, MetaItem{Label: "Generated", Value: r.GeneratedLabel()})
	return r, nil
}

func validRange(s string) bool {
	for _, r := range TimeRanges {
		if r == s {
			return true
		}
	}
	return false
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func uitoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func buildSales(r *Report, rows []SalesRecord, opts Options) {
	s := SummarizeSales(rows)

	r.Title = "Sales Report"
	r.Summary = s
	r.Meta = []MetaItem{
		{Label: "Report Type", Value: "Sales Report"},
		{Label: "Time Range", Value: TimeRangeLabel(opts.TimeRange)},
	}
	r.Cards = []Card{
		{Title: "Total Sales", Value: Money(s.TotalAmount)},
		{Title: "Total Items", Value: itoa(s.TotalItems)},
		{Title: "Transactions", Value: itoa(s.Transactions)},
	}

	r.Table = Table{
		Title:   "Transaction Details",
		Columns: []string{"ID", "Date", "Amount", "Items", "Customer"},
		Footer:  []string{"Total", "", Money(s.TotalAmount), itoa(s.TotalItems), ""},
	}
	for _, row := range rows {
		r.Table.Rows = append(r.Table.Rows, []string{
			uitoa(row.ID), row.Date.Format(dateLayout), Money(row.Amount), itoa(row.Items), row.Customer,
		})
		r.Table.RowClasses = append(r.Table.RowClasses, "")
	}

	highest := "Highest transaction: none"
	if s.Highest != nil {
		highest = fmt.Sprintf("Highest transaction: %s (%s)", Money(s.Highest.Amount), s.Highest.Customer)
	}

	r.AnalysisTitle = "Data Analysis"
	r.Analysis = []Section{
		{
			Heading: "Customer Breakdown",
			Lines: []string{
				fmt.Sprintf("%d out of %d transactions (%s) were from members, while %d transactions (%s) were from walk-in customers.",
					s.MemberTransactions, s.Transactions, s.MemberShare, s.WalkInTransactions, s.WalkInShare),
				fmt.Sprintf("Member transactions accounted for %s in sales (%s of total).",
					Money(s.MemberAmount), s.MemberAmountShare),
			},
		},
		{
			Heading: "Transaction Insights",
			Lines: []string{
				"Average transaction value: " + Money(s.AverageValue),
				"Average items per transaction: " + oneDecimal(s.AverageItems),
				highest,
			},
		},
	}
}

func buildInventory(r *Report, rows []InventoryRecord) {
	s := SummarizeInventory(rows)

	r.Title = "Inventory Report"
	r.Summary = s
	r.Meta = []MetaItem{
		{Label: "Report Type", Value: "Inventory Report"},
		{Label: "Status", Value: "Current Stock"},
	}
	r.Cards = []Card{
		{Title: "Total Products", Value: itoa(s.Products)},
		{Title: "Low Stock Items", Value: itoa(s.LowStock)},
		{Title: "Categories", Value: itoa(len(s.Categories))},
	}

	r.Table = Table{
		Title:   "Inventory Status",
		Columns: []string{"ID", "Product Name", "Category", "Current Stock", "Reorder Level", "Status"},
	}
	for _, row := range rows {
		r.Table.Rows = append(r.Table.Rows, []string{
			uitoa(row.ID), row.Name, row.Category, itoa(row.Stock), itoa(row.ReorderLevel), row.Status,
		})
		class := ""
		if row.Status == StatusLowStock {
			class = rowClassLow
		}
		r.Table.RowClasses = append(r.Table.RowClasses, class)
	}

	distribution := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		distribution = append(distribution, fmt.Sprintf("%s: %d products (%s of inventory)", c.Name, c.Count, c.Share))
	}

	r.AnalysisTitle = "Inventory Analysis"
	r.Analysis = []Section{
		{
			Heading: "Stock Level Analysis",
			Lines: []string{
				fmt.Sprintf("%d out of %d products (%s) are currently low in stock.", s.LowStock, s.Products, s.LowStockShare),
				fmt.Sprintf("%d products are below their reorder threshold and require immediate attention.", s.BelowReorder),
			},
		},
		{Heading: "Category Distribution", Lines: distribution},
	}
}

func buildMembers(r *Report, rows []MemberRecord, opts Options) {
	s := SummarizeMembers(rows, opts.Now)

	r.Title = "Member Report"
	r.Summary = s
	r.Meta = []MetaItem{
		{Label: "Report Type", Value: "Member Activity Report"},
		{Label: "Time Range", Value: TimeRangeLabel(opts.TimeRange)},
	}
	r.Cards = []Card{
		{Title: "Total Members", Value: itoa(s.Members)},
		{Title: "Total Purchases", Value: itoa(s.TotalPurchases)},
		{Title: "Total Points", Value: itoa(s.TotalPoints)},
	}

	r.Table = Table{
		Title:   "Member Activity",
		Columns: []string{"ID", "Name", "Email", "Join Date", "Purchases", "Loyalty Points"},
	}
	for _, row := range rows {
		r.Table.Rows = append(r.Table.Rows, []string{
			uitoa(row.ID), row.Name, row.Email, row.JoinDate.Format(dateLayout), itoa(row.Purchases), itoa(row.Points),
		})
		r.Table.RowClasses = append(r.Table.RowClasses, "")
	}

	mostActive := "Most active member: None (0 purchases)"
	if s.MostActive != nil {
		mostActive = fmt.Sprintf("Most active member: %s (%d purchases)", s.MostActive.Name, s.MostActive.Purchases)
	}

	r.AnalysisTitle = "Member Analysis"
	r.Analysis = []Section{
		{
			Heading: "Membership Overview",
			Lines: []string{
				fmt.Sprintf("%d new members joined in the last 90 days.", s.NewMembers),
				fmt.Sprintf("Average membership duration: %d days", s.AverageDurationDays),
			},
		},
		{
			Heading: "Activity Metrics",
			Lines: []string{
				"Average purchases per member: " + oneDecimal(s.AveragePurchases),
				"Average points per member: " + oneDecimal(s.AveragePoints),
				mostActive,
			},
		},
	}
}

func buildCredit(r *Report, rows []CreditRecord, now time.Time) {
	s := SummarizeCredit(rows, now)

	r.Title = "Credit Report"
	r.Summary = s
	r.Meta = []MetaItem{
		{Label: "Report Type", Value: "Member Credit Report"},
		{Label: "Status", Value: "Current Balances"},
	}
	r.Cards = []Card{
		{Title: "Total Credit", Value: Money(s.TotalBalance)},
		{Title: "Near Limit", Value: itoa(s.NearLimit)},
		{Title: "Paid in Full", Value: itoa(s.PaidInFull)},
	}

	r.Table = Table{
		Title:   "Credit Status",
		Columns: []string{"ID", "Member", "Balance", "Credit Limit", "Last Payment", "Status"},
	}
	for _, row := range rows {
		last := "Never"
		if !row.LastPayment.IsZero() {
			last = row.LastPayment.Format(dateLayout)
		}
		r.Table.Rows = append(r.Table.Rows, []string{
			uitoa(row.ID), row.Member, Money(row.Balance), Money(row.Limit), last, row.Status,
		})
		class := ""
		if row.Status == StatusNearLimit {
			class = rowClassNearLim
		}
		r.Table.RowClasses = append(r.Table.RowClasses, class)
	}

	r.AnalysisTitle = "Credit Analysis"
	r.Analysis = []Section{
		{
			Heading: "Credit Utilization",
			Lines: []string{
				"Overall credit utilization: " + s.Utilization.String(),
				fmt.Sprintf("%d members have utilized over 80%% of their credit limit.", s.OverEighty),
				"Average credit balance: " + Money(s.AverageBalance),
			},
		},
		{
			Heading: "Payment Patterns",
			Lines: []string{
				fmt.Sprintf("%d members made payments in the last 30 days.", s.RecentPayments),
				fmt.Sprintf("%d members (%s) have fully paid their balances.", s.PaidInFull, s.PaidInFullShare),
			},
		},
	}
}
