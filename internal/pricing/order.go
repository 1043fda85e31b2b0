package pricing

const (
	PrintSingle = "single"
	PrintDouble = "double"

	UrgencyStandard = "standard"
	UrgencyOneDay   = "oneday"
	UrgencyUrgent   = "urgent"
	UrgencyExpress  = "express"

	DesignNone = "none"

	MaterialPaper300 = "paper300"
	MaterialDesigner = "designer"
	MaterialPlastic  = "plastic"
)

// Order is a user's selection for one product. Stock holds the material for
// business cards. Orders are values: every recomputation builds a new one.
type Order struct {
	Product        Product `json:"product"`
	Size           string  `json:"size"`
	Print          string  `json:"print"`
	Stock          string  `json:"stock"`
	GSM            string  `json:"gsm,omitempty"`
	Quantity       int     `json:"quantity"`
	Urgency        string  `json:"urgency"`
	Design         string  `json:"design"`
	Lamination     bool    `json:"lamination,omitempty"`
	RoundedCorners bool    `json:"roundedCorners,omitempty"`
	CreasingLines  int     `json:"creasingLines,omitempty"`
}

// applyMaterialRules forces off finishing that the material does not allow.
func applyMaterialRules(o Order) Order {
	if o.Product == ProductBusinessCards && o.Stock == MaterialPlastic {
		o.Lamination = false
		o.RoundedCorners = false
	}
	if o.CreasingLines < 0 {
		o.CreasingLines = 0
	}
	return o
}
