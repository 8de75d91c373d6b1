package dto

// ReplenishmentSuggestionDTO producto con stock bajo en una sucursal y la acción sugerida:
// "transfer" si la otra sucursal tiene excedente, "add" si hay que cargar mercadería.
type ReplenishmentSuggestionDTO struct {
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	Branch          string `json:"branch"`
	CurrentStock    int    `json:"current_stock"`
	Threshold       int    `json:"threshold"`
	UnitsSold30Days int    `json:"units_sold_30d"`
	SuggestedQty    int    `json:"suggested_qty"`
	Action          string `json:"action"`
	SourceBranch    string `json:"source_branch,omitempty"`
	Priority        int    `json:"priority"` // 1 = más urgente
}
