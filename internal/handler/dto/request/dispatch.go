package request

type OfferResponseRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

func (r OfferResponseRequest) Accepted() bool {
	return r.Action == "accept"
}

type HeartbeatRequest struct {
	Available bool     `json:"available"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}
