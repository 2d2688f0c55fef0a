package admin

// SectionSchema binds a form to the content section it edits. Several
// forms may edit the same section.
type SectionSchema struct {
	Section string
	Schema  Schema
}

func required(name, label, message string, kind FieldKind) Field {
	return Field{Name: name, Label: label, Kind: kind, Required: true, Message: message}
}

func optionalURL(name, label string) Field {
	return Field{Name: name, Label: label, Kind: FieldURL}
}

var (
	titleField    = required("title", "Título", "El título es requerido", FieldText)
	subtitleField = required("subtitle", "Subtítulo", "El subtítulo es requerido", FieldTextarea)
)

// SectionForms lists the content forms of the admin panel by name.
var SectionForms = map[string]SectionSchema{
	"home": {Section: "home", Schema: Schema{Fields: []Field{
		titleField,
		subtitleField,
		required("ctaText", "Texto del botón", "El texto del botón CTA es requerido", FieldText),
	}}},
	"about": {Section: "about", Schema: Schema{Fields: []Field{titleField, subtitleField}}},
	"about_philosophy": {Section: "about", Schema: Schema{Fields: []Field{
		required("mission", "Misión", "La descripción de la misión es requerida", FieldTextarea),
		required("vision", "Visión", "La descripción de la visión es requerida", FieldTextarea),
		required("values", "Valores", "La descripción de los valores es requerida", FieldTextarea),
	}}},
	"catalog":  {Section: "catalog", Schema: Schema{Fields: []Field{titleField, subtitleField}}},
	"faq_page": {Section: "faq_page", Schema: Schema{Fields: []Field{titleField, subtitleField}}},
	"orders_page": {Section: "orders_page", Schema: Schema{Fields: []Field{
		titleField,
		subtitleField,
		required("whatsapp_button", "Texto del botón de WhatsApp", "El texto del botón de WhatsApp es requerido", FieldText),
		optionalURL("whatsapp_link", "Enlace de WhatsApp"),
	}}},
	"footer": {Section: "footer", Schema: Schema{Fields: []Field{
		required("company", "Compañía", "El nombre de la compañía es requerido", FieldText),
		required("rights", "Derechos", "Los derechos de autor son requeridos", FieldText),
		optionalURL("facebook_url", "Facebook"),
		optionalURL("instagram_url", "Instagram"),
	}}},
	"contact": {Section: "contact", Schema: Schema{Fields: []Field{titleField, subtitleField}}},
}

// Entity schemas.
var (
	ProductSchema = Schema{Fields: []Field{
		required("name", "Nombre", "El nombre es requerido", FieldText),
		required("description", "Descripción", "La descripción es requerida", FieldTextarea),
		required("price", "Precio", "El precio debe ser un número positivo", FieldPrice),
		required("weight", "Peso", "El peso es requerido", FieldText),
		{Name: "category_id", Label: "Categoría", Kind: FieldText},
	}}

	FAQSchema = Schema{Fields: []Field{
		required("question", "Pregunta", "La pregunta es requerida", FieldText),
		required("answer", "Respuesta", "La respuesta es requerida", FieldTextarea),
	}}

	CategorySchema = Schema{Fields: []Field{
		required("name", "Nombre", "El nombre es requerido", FieldText),
	}}

	ImageSchema = Schema{Fields: []Field{
		required("alt_text", "Texto alternativo", "El texto alternativo es requerido", FieldText),
	}}

	LocationSchema = Schema{Fields: []Field{
		required("name", "Nombre", "El nombre es requerido", FieldText),
		required("address", "Dirección", "La dirección es requerida", FieldText),
		required("hours", "Horario", "El horario es requerido", FieldText),
	}}

	ContactMethodSchema = Schema{Fields: []Field{
		required("type", "Tipo", "El tipo es requerido", FieldText),
		required("value", "Valor", "El valor es requerido", FieldText),
		{Name: "description", Label: "Descripción", Kind: FieldText},
	}}
)
