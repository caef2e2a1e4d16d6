package backend

import (
	"fmt"

	"txledger/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	sinks := make([]SinkType, 0, len(appConfig.ReportSinks))
	for _, name := range appConfig.ReportSinks {
		st := SinkType(name)
		if !st.IsValid() {
			return Config{}, fmt.Errorf("invalid report sink %q: must be one of %v", name, GetSinkTypeStrings())
		}
		sinks = append(sinks, st)
	}

	return Config{
		Sinks: sinks,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:        appConfig.AMQPURL,
		AMQPExchange:   appConfig.AMQPExchange,
		AMQPRoutingKey: appConfig.AMQPRoutingKey,

		GoogleSpreadsheetID: appConfig.GoogleSpreadsheetID,
		GoogleSheetName:     appConfig.GoogleSheetName,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if len(c.Sinks) == 0 {
		return fmt.Errorf("no report sink configured")
	}

	for _, st := range c.Sinks {
		if !st.IsValid() {
			return fmt.Errorf("invalid sink type: %s", st)
		}

		switch st {
		case SQLiteSink:
			if c.SQLiteDBPath == "" {
				return fmt.Errorf("SQLite database path is required for sqlite sink")
			}
		case AMQPSink:
			if c.AMQPURL == "" {
				return fmt.Errorf("AMQP URL is required for amqp sink")
			}
			if c.AMQPExchange == "" {
				return fmt.Errorf("AMQP exchange is required for amqp sink")
			}
		case SheetsSink:
			if c.GoogleSpreadsheetID == "" {
				return fmt.Errorf("Google Spreadsheet ID is required for sheets sink")
			}
		case StdoutSink:
			// Nothing to validate
		}
	}

	return nil
}

// GetSinkTypes returns all valid sink types
func GetSinkTypes() []SinkType {
	return []SinkType{StdoutSink, SQLiteSink, AMQPSink, SheetsSink}
}

// GetSinkTypeStrings returns all valid sink type strings
func GetSinkTypeStrings() []string {
	types := GetSinkTypes()
	strs := make([]string, len(types))
	for i, t := range types {
		strs[i] = t.String()
	}
	return strs
}
