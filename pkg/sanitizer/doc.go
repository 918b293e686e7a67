// Package sanitizer provides input normalization for guest and catalog data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings or empty slices rather than errors, leaving rejection to validation.
//
// Normalization includes:
//   - Phone numbers: Convert to E.164 format (+[country][number])
//   - Names: Collapse whitespace, trim leading/trailing spaces
//   - Emails: Trim and lowercase
//   - Promotion codes: Uppercase, strip spaces
//   - Country codes: Uppercase ISO 3166-1 alpha-2, drop malformed entries
//   - Slices: Remove duplicates and empty values after normalization
package sanitizer
