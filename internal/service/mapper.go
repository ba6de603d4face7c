package service

import (
	"procurement/internal/model"
	"procurement/pkg/api"
)

func toUser(u model.User) api.User {
	return api.User{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}

func toCategory(c model.Category) api.Category {
	return api.Category{
		ID:          c.ID.String(),
		Description: c.Description,
		UnitCost:    c.UnitCost,
	}
}

// toPurchaseRequest embeds owner and approver when they were preloaded and
// falls back to bare ids otherwise.
func toPurchaseRequest(r model.PurchaseRequest) api.PurchaseRequest {
	out := api.PurchaseRequest{
		ID:            r.ID.String(),
		Owner:         api.RefID(r.UserID.String()),
		CategoryID:    r.CategoryID.String(),
		Quantity:      r.Quantity,
		Cost:          r.Cost,
		Justification: r.Justification,
		RequestedAt:   r.CreatedAt,
		Status:        r.Status,
		DecidedAt:     r.DecidedAt,
	}
	if r.User != nil {
		out.Owner = api.RefTo(toUser(*r.User))
	}
	if r.DecidedBy != nil {
		ref := api.RefID(r.DecidedBy.String())
		if r.Approver != nil {
			ref = api.RefTo(toUser(*r.Approver))
		}
		out.Approver = &ref
	}
	return out
}

func toPurchaseRequests(rs []model.PurchaseRequest) []api.PurchaseRequest {
	out := make([]api.PurchaseRequest, 0, len(rs))
	for _, r := range rs {
		out = append(out, toPurchaseRequest(r))
	}
	return out
}
