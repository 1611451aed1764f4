package build

import "strings"

var (
	Version = "dev"
	AppName = "Schemaflow"
	Slug    = ""
)

func init() {
	if Slug == "" {
		Slug = strings.ToLower(AppName)
	}
}
