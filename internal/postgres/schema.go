package postgres

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS site_content (
    section TEXT NOT NULL,
    element TEXT NOT NULL,
    kind TEXT NOT NULL DEFAULT 'text',
    content TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (section, element)
)`,
	`CREATE TABLE IF NOT EXISTS images (
    name TEXT PRIMARY KEY,
    section TEXT NOT NULL,
    url TEXT NOT NULL,
    alt_text TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS products (
    product_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
    weight TEXT NOT NULL DEFAULT '',
    category_id TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS categories (
    category_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
)`,
	`CREATE TABLE IF NOT EXISTS faqs (
    faq_id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS storefront_meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_images_section ON images(section)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id)`,
}
