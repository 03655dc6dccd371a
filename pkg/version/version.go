package version

// Release version injected by the compiler via -ldflags.
var version = "development"

func Version() string {
	if version == "" {
		panic("binary compiled with empty version")
	}
	return version
}
