package config

const (
	// MaxNodeNameLength is the maximum length for folder and page names.
	// Fits a PostgreSQL VARCHAR(255) should the column ever be narrowed.
	MaxNodeNameLength = 255

	// MaxIconLength bounds the icon field (an emoji or an icon class name)
	MaxIconLength = 64

	// MaxRequestBodyBytes limits JSON request bodies
	MaxRequestBodyBytes = 1 << 20
)
