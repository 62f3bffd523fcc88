package config

import "time"

// Application constants
const (
	AppName   = "bangreport"
	EnvPrefix = "BANGS"

	// Input layout under the data directory
	DefaultDataDir  = "data"
	BangsFileName   = "bangs.csv"
	BattingFileName = "batting.csv"
	GamesFileName   = "games.csv"
	PlayersDirName  = "players"

	// Output layout under the output directory
	DefaultOutputDir   = "output"
	DefaultLogsDir     = "logs"
	TablesDirName      = "tables"
	ChartsDirName      = "charts"
	ReportHTMLFileName = "report.html"
	ReportXLSXFileName = "report.xlsx"
	ReportJSONFileName = "report.json"
	ReportPDFFileName  = "report.pdf"

	// Season defaults
	DefaultSeasonYear = 2017
	DefaultTeam       = "HOU"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	DefaultPDFTimeout = 60 * time.Second
)
