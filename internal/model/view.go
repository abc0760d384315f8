package model

// ViewMeta is the backend-supplied description of one view: its url and the
// widgets it renders. Supplied per screen; replaced wholesale on screen
// change.
type ViewMeta struct {
	Name    string   `json:"name" yaml:"name"`
	URL     string   `json:"url" yaml:"url"`
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Widgets []Widget `json:"widgets" yaml:"widgets"`
}

// BCMeta is the backend-supplied declaration of one BC within a screen.
type BCMeta struct {
	Name        string `json:"name" yaml:"name"`
	ParentName  string `json:"parentName,omitempty" yaml:"parentName,omitempty"`
	URL         string `json:"url" yaml:"url"`
	DefaultSort string `json:"defaultSort,omitempty" yaml:"defaultSort,omitempty"`
	Page        int    `json:"page,omitempty" yaml:"page,omitempty"`
	Limit       int    `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// ScreenMeta is the backend-supplied description of one screen.
type ScreenMeta struct {
	Name          string     `json:"name" yaml:"name"`
	Title         string     `json:"title,omitempty" yaml:"title,omitempty"`
	DefaultScreen bool       `json:"defaultScreen,omitempty" yaml:"defaultScreen,omitempty"`
	PrimaryView   string     `json:"primaryView,omitempty" yaml:"primaryView,omitempty"`
	Views         []ViewMeta `json:"views" yaml:"views"`
	BCs           []BCMeta   `json:"bc" yaml:"bc"`
}

// FindView returns the view with the given name, nil when absent.
func (s *ScreenMeta) FindView(name string) *ViewMeta {
	for i := range s.Views {
		if s.Views[i].Name == name {
			return &s.Views[i]
		}
	}
	return nil
}

// DefaultView returns the screen's primary view when declared, otherwise the
// first view, otherwise nil.
func (s *ScreenMeta) DefaultView() *ViewMeta {
	if s.PrimaryView != "" {
		if v := s.FindView(s.PrimaryView); v != nil {
			return v
		}
	}
	if len(s.Views) > 0 {
		return &s.Views[0]
	}
	return nil
}

// BuildBCMap materializes descriptors for all of a screen's declared BCs.
// Page defaults to 1 and limit to the conventional 5-record page when the
// backend omits them.
func (s *ScreenMeta) BuildBCMap() BCMap {
	bcMap := make(BCMap, len(s.BCs))
	for _, bc := range s.BCs {
		page, limit := bc.Page, bc.Limit
		if page == 0 {
			page = 1
		}
		if limit == 0 {
			limit = 5
		}
		bcMap[bc.Name] = &BCDescriptor{
			Name:       bc.Name,
			ParentName: bc.ParentName,
			URL:        bc.URL,
			Page:       page,
			Limit:      limit,
		}
	}
	return bcMap
}

// FindScreen returns the screen with the given name, nil when absent.
func FindScreen(screens []ScreenMeta, name string) *ScreenMeta {
	for i := range screens {
		if screens[i].Name == name {
			return &screens[i]
		}
	}
	return nil
}

// DefaultScreen picks the desired screen when the route names none: the
// screen flagged defaultScreen, falling back to the first available.
func DefaultScreen(screens []ScreenMeta) *ScreenMeta {
	for i := range screens {
		if screens[i].DefaultScreen {
			return &screens[i]
		}
	}
	if len(screens) > 0 {
		return &screens[0]
	}
	return nil
}
