// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/whisperbox/internal/app/system/auth"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string
	Title    string

	// User context (from auth middleware)
	IsLoggedIn          bool
	Username            string
	IsAcceptingMessages bool
}

var siteName = "WhisperBox"

// Configure sets the site name shown in page chrome. Called once from
// startup before handlers run.
func Configure(name string) {
	if name != "" {
		siteName = name
	}
}

// NewBaseVM builds the common view model from the request context.
func NewBaseVM(r *http.Request, title string) BaseVM {
	vm := BaseVM{
		SiteName: siteName,
		Title:    title,
	}
	if su, ok := auth.CurrentUser(r); ok {
		vm.IsLoggedIn = true
		vm.Username = su.Username
		vm.IsAcceptingMessages = su.IsAcceptingMessages
	}
	return vm
}
