package dto

type CreateStoreRequest struct {
	Name    string  `json:"name" validate:"required"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type UpdateStoreRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type StoreResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Active  bool    `json:"active"`
}
