package common

import (
	"github.com/teemow/travelcal/internal/google"
)

// GetAccountFromArgs returns the "account" argument, or the default account
// when it is absent, empty or not a string.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return google.DefaultAccount
}

// GetStringArg returns a string argument. A missing or empty value yields ok false.
func GetStringArg(args map[string]interface{}, name string) (string, bool) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
