// Package seed holds the default site content and categories written into
// an empty store on first attach.
package seed

import "github.com/mesh-intelligence/storefront/pkg/types"

const (
	placeholderTitle    = "Lorem Ipsum"
	placeholderSubtitle = "Lorem ipsum dolor sit amet, consectetur adipiscing elit."
)

// Content returns the default site content entries. List-valued elements
// start as empty JSON arrays.
func Content() []types.ContentEntry {
	text := func(section, element, value string) types.ContentEntry {
		return types.ContentEntry{Section: section, Element: element, Kind: types.KindText, Value: value}
	}
	list := func(section, element string) types.ContentEntry {
		return types.ContentEntry{Section: section, Element: element, Kind: types.KindJSON, Value: "[]"}
	}
	return []types.ContentEntry{
		text("home", "title", placeholderTitle),
		text("home", "subtitle", placeholderSubtitle),
		text("home", "ctaText", "Ver catálogo"),
		text("about", "title", placeholderTitle),
		text("about", "subtitle", placeholderSubtitle),
		text("about", "mission", placeholderSubtitle),
		text("about", "vision", placeholderSubtitle),
		text("about", "values", placeholderSubtitle),
		text("catalog", "title", placeholderTitle),
		text("catalog", "subtitle", placeholderSubtitle),
		text("faq_page", "title", placeholderTitle),
		text("faq_page", "subtitle", placeholderSubtitle),
		text("orders_page", "title", placeholderTitle),
		text("orders_page", "subtitle", placeholderSubtitle),
		text("orders_page", "whatsapp_button", "Pedir por WhatsApp"),
		text("orders_page", "whatsapp_link", ""),
		text("footer", "company", placeholderTitle),
		text("footer", "rights", "Todos los derechos reservados."),
		text("footer", "facebook_url", ""),
		text("footer", "instagram_url", ""),
		text("contact", "title", placeholderTitle),
		text("contact", "subtitle", placeholderSubtitle),
		list("contact", "locations"),
		list("contact", "contact_methods"),
	}
}

// Categories returns the default cheese categories. Their ids are the slugs
// used by existing product rows.
func Categories() []types.Category {
	return []types.Category{
		{CategoryID: "doble-crema", Name: "Quesos Doble Crema"},
		{CategoryID: "oaxaca", Name: "Quesos Oaxaca"},
		{CategoryID: "manchego", Name: "Quesos Manchego"},
		{CategoryID: "specialty", Name: "Quesos Especiales"},
	}
}
