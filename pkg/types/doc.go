// Package types defines the Store interface, the typed table interfaces,
// the storefront records (site content, images, products, categories, FAQs,
// list items) and the standard errors shared by every storage backend.
package types
