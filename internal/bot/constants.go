package bot

const (
	StepProductSelection = "product_selection"
	StepConfigure        = "configure"
	StepQuantityInput    = "quantity_input"
)

// callback data prefixes
const (
	callbackProduct = "product:"
	callbackSet     = "set:"
	callbackAsk     = "ask:"
	callbackExport  = "export"
	callbackLink    = "link"
	callbackReset   = "reset"
)

const (
	maxCreasingLines = 5
	maxDocumentSize  = 4 << 20
)
