package constants

// UserTypes holds the account roles offered at signup.
var UserTypes = []string{"CA", "Tax Professional", "Business Owner"}

// IsValidUserType reports whether t is one of the signup roles.
func IsValidUserType(t string) bool {
	for _, u := range UserTypes {
		if t == u {
			return true
		}
	}
	return false
}
