// Package file loads the TOML settings file. The schema is closed:
// unknown keys fail the load so configuration typos surface immediately
// instead of silently applying defaults.
package file
