package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ValidationDetail describe un campo rechazado por la validación del cuerpo.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InsufficientStockDetail acompaña a INSUFFICIENT_STOCK.
type InsufficientStockDetail struct {
	WarehouseID string `json:"warehouse_id"`
	ProductID   string `json:"product_id"`
	Requested   string `json:"requested"`
	Available   string `json:"available"`
}
