package tenancy

import (
	"gorm.io/gorm"

	"practice-service/internal/apperr"
	"practice-service/internal/model"
)

// StaffScope is the resolved set of workspaces a staff identity may act
// within. All marks the system admin escape hatch; Workspaces still
// holds the admin's own workspaces so that Current stays meaningful.
type StaffScope struct {
	All        bool
	Workspaces []model.Workspace
}

// IDs returns the workspace ids in resolution order.
func (s StaffScope) IDs() []uint {
	ids := make([]uint, len(s.Workspaces))
	for i := range s.Workspaces {
		ids[i] = s.Workspaces[i].ID
	}
	return ids
}

// Current is the workspace used for creates: the first resolved one by
// creation order.
func (s StaffScope) Current() (*model.Workspace, bool) {
	if len(s.Workspaces) == 0 {
		return nil, false
	}
	return &s.Workspaces[0], true
}

// RequireCurrent is Current failing with NotFound when nothing resolved.
func (s StaffScope) RequireCurrent() (*model.Workspace, error) {
	ws, ok := s.Current()
	if !ok {
		return nil, apperr.NotFound(ErrNoWorkspace)
	}
	return ws, nil
}

// Allows reports whether workspaceID is inside the scope.
func (s StaffScope) Allows(workspaceID uint) bool {
	if s.All {
		return true
	}
	for i := range s.Workspaces {
		if s.Workspaces[i].ID == workspaceID {
			return true
		}
	}
	return false
}

// Apply narrows db to rows whose column is inside the scope. An empty
// scope matches nothing.
func (s StaffScope) Apply(db *gorm.DB, column string) *gorm.DB {
	if s.All {
		return db
	}
	ids := s.IDs()
	if len(ids) == 0 {
		return db.Where("1 = 0")
	}
	return db.Where(column+" IN ?", ids)
}

// Filter returns Apply as a reusable query scope.
func (s StaffScope) Filter(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB { return s.Apply(db, column) }
}
