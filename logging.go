package contagiongo

import "go.uber.org/zap"

// NewLogger builds the structured logger the engine threads through
// Algorithm and the demonstration event/datalog packages. debug selects a
// development config (console-friendly, DebugLevel); otherwise a production
// JSON config is used.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	return cfg.Build()
}
