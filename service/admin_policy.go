package service

// AdminPolicy decides which identities hold application-wide admin rights.
// A nil policy grants nothing.
type AdminPolicy struct {
	ids map[uint]struct{}
}

func NewAdminPolicy(adminIDs []uint) *AdminPolicy {
	ids := make(map[uint]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id != 0 {
			ids[id] = struct{}{}
		}
	}
	return &AdminPolicy{ids: ids}
}

func (p *AdminPolicy) IsAdmin(userID uint) bool {
	if p == nil {
		return false
	}
	_, ok := p.ids[userID]
	return ok
}
