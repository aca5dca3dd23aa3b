// Package config handles settings for mise-en-place.
// Values are layered from the embedded defaults, the user's config.toml,
// MEP_* environment variables and finally explicit overrides from flags.
package config
