package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Season fixture. Four Astros games in 2017: two at home against Seattle with
// recorded bangs and two at Texas without. The numbers are small enough to
// check every summary table by hand.
const (
	FixtureBangsCSV = `game_date,opponent,batter,inning,balls,strikes,call,lineup,youtube_id,pitcher,home_score,away_score
4/3/17,SEA,Jose Altuve,1,0,1,changeup,2,a1,Felix Hernandez,0,0
4/3/17,SEA,"Altuve, Jose",3,1,1,slider,2,a2,Felix Hernandez,1,0
4/3/17,SEA,Carlos Correa,1,0,0,changeup,3,a3,Felix Hernandez,0,0
4/4/17,SEA,C. Correa,5,2,2,curveball,3,a4,Hisashi Iwakuma,1,1
4/4/17,SEA,Evan Gattis,6,1,2,changeup,6,a5,Hisashi Iwakuma,1,2
not a date,SEA,Jose Altuve,7,0,1,slider,2,a6,Felix Hernandez,2,0
`

	FixtureBattingCSV = `Name,G,PA,AB,H,2B,3B,HR,BB,HBP,SF,SO
José Altuve,4,18,16,5,1,0,1,1,1,0,2
Carlos Correa,4,17,14,4,1,0,1,2,0,1,3
Evan Gattis,2,8,7,2,0,0,1,1,0,0,3
`

	FixtureGamesCSV = `Date,Opp,@,R,RA
"Monday, Apr 3",SEA,,3,0
"Tuesday, Apr 4",SEA,,1,2
"Friday, May 5",TEX,@,7,3
"Saturday, May 6",TEX,@,2,4
`

	// Player name comes from the file name.
	FixtureAltuveCSV = `Date,Opp,@,AB,H,BB,HBP,SF,TB,HR
2017-04-03,SEA,,4,2,0,0,0,3,0
2017-04-04,SEA,,3,0,1,0,0,0,0
2017-05-05,TEX,@,4,1,0,1,0,4,1
2017-05-06,TEX,@,5,2,0,0,0,2,0
`

	// Player name comes from the Player column.
	FixtureCorreaCSV = `Player,Date,Opp,@,AB,H,BB,HBP,SF,TB,HR
"Correa, Carlos",4/3/2017,SEA,,3,1,1,0,1,1,0
"Correa, Carlos",4/4/2017,SEA,,4,1,0,0,0,2,0
"Correa, Carlos",5/5/2017,TEX,@,4,2,0,0,0,5,1
"Correa, Carlos",5/6/2017,TEX,@,3,0,1,0,0,0,0
`
)

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteSeasonFixture writes the fixture season into dataDir using the default
// input layout.
func WriteSeasonFixture(t *testing.T, dataDir string) {
	t.Helper()
	WriteFile(t, dataDir, "bangs.csv", FixtureBangsCSV)
	WriteFile(t, dataDir, "batting.csv", FixtureBattingCSV)
	WriteFile(t, dataDir, "games.csv", FixtureGamesCSV)
	WriteFile(t, dataDir, filepath.Join("players", "jose_altuve.csv"), FixtureAltuveCSV)
	WriteFile(t, dataDir, filepath.Join("players", "carlos_correa.csv"), FixtureCorreaCSV)
}
