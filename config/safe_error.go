package config

// SafeErrorMessage returns the real error text in debug mode and the
// fallback message in release mode, so internal detail never reaches
// clients in production.
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
