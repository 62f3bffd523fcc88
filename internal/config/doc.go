// Package config provides configuration management for bangreport.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables, including an optional .env file (highest priority)
//	2. config.yaml
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern BANGS_<SECTION>_<FIELD>:
//
//	BANGS_PATHS_DATA_DIR=./data
//	BANGS_SEASON_YEAR=2017
//	BANGS_ANALYSIS_TTEST_METRIC=obp
//	BANGS_SERVER_PORT=8080
//
// Name aliases are usually set in YAML:
//
//	season:
//	  name_aliases:
//	    "Gurriel, Yuli": "Yulieski Gurriel"
//
// # Paths
//
// Paths resolves every input and output location from a PathsConfig. The input
// files live at fixed relative locations under the data directory; the output
// directory receives report.html, report.xlsx, report.json, report.pdf and one
// CSV per summary table under tables/.
package config
