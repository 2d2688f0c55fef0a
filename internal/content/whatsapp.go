package content

import (
	"net/url"
	"strings"
)

// Fallback order link used when orders_page.whatsapp_link is empty.
const (
	DefaultWhatsAppPhone   = "529613211389"
	DefaultWhatsAppMessage = "Hola, me gustaría hacer un pedido de quesos"
)

// WhatsAppURL builds a wa.me link with a prefilled message.
func WhatsAppURL(phone, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + text
}

// WhatsAppLink returns the configured order link of the orders_page
// section, or the default link when none is set.
func WhatsAppLink(orders Section) string {
	if link := strings.TrimSpace(orders.Text("whatsapp_link")); link != "" {
		return link
	}
	return WhatsAppURL(DefaultWhatsAppPhone, DefaultWhatsAppMessage)
}
