package customers

type bulkCreateRequest struct {
	Data []createCustomerRequest `json:"data"`
}

type createCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Field string `json:"field" validate:"max=200"`
}

type updateCustomerRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Field *string `json:"field,omitempty" validate:"omitempty,max=200"`
}
