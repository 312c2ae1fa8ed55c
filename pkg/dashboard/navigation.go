package dashboard

// MenuItem is one entry of the sidebar.
type MenuItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Navigation lists the main sidebar entries in display order.
func Navigation() []MenuItem {
	return []MenuItem{
		{Title: "Dashboard", URL: "/"},
		{Title: "Invoices", URL: "/invoices"},
		{Title: "Proposals", URL: "/proposals"},
		{Title: "Clients", URL: "/clients"},
	}
}

// FooterNavigation lists the entries pinned below the main menu.
func FooterNavigation() []MenuItem {
	return []MenuItem{{Title: "Settings", URL: "/settings"}}
}

// Active returns the title of the menu item matching path, or "" when nothing matches.
func Active(path string) string {
	for _, item := range append(Navigation(), FooterNavigation()...) {
		if item.URL == path {
			return item.Title
		}
	}
	return ""
}
