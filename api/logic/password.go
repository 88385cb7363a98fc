/* password.go
 * Contains the password change validation
 * Authors: Gamers Bot contributors
 */

package logic

// ValidatePasswordChange rejects an empty password or a confirmation that does not match
func ValidatePasswordChange(password string, confirm string) error {
	invalid := make(map[string]string)
	if password == "" {
		invalid["password"] = "required"
	}
	if confirm == "" {
		invalid["confirm"] = "required"
	} else if password != confirm {
		invalid["confirm"] = "passwords do not match"
	}
	if len(invalid) > 0 {
		return &ValidationError{Fields: invalid}
	}
	return nil
}
