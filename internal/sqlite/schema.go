package sqlite

// Schema DDL for all tables. Times are stored as RFC 3339 text and prices
// as integer cents.
const (
	createSiteContent = `CREATE TABLE site_content (
    section TEXT NOT NULL,
    element TEXT NOT NULL,
    kind TEXT NOT NULL DEFAULT 'text',
    content TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (section, element)
);`

	createImages = `CREATE TABLE images (
    name TEXT PRIMARY KEY,
    section TEXT NOT NULL,
    url TEXT NOT NULL,
    alt_text TEXT NOT NULL DEFAULT ''
);`

	createProducts = `CREATE TABLE products (
    product_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    price_cents INTEGER NOT NULL,
    weight TEXT NOT NULL DEFAULT '',
    category_id TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createCategories = `CREATE TABLE categories (
    category_id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);`

	createFAQs = `CREATE TABLE faqs (
    faq_id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxImagesSection    = `CREATE INDEX idx_images_section ON images(section);`
	idxProductsCategory = `CREATE INDEX idx_products_category ON products(category_id);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createSiteContent,
	createImages,
	createProducts,
	createCategories,
	createFAQs,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxImagesSection,
	idxProductsCategory,
}
