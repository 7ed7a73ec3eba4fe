package teams

import "strings"

// aliases maps common nicknames to full franchise names (lower case)
var aliases = map[string]string{
	// NBA
	"lakers":        "los angeles lakers",
	"celtics":       "boston celtics",
	"warriors":      "golden state warriors",
	"nets":          "brooklyn nets",
	"knicks":        "new york knicks",
	"76ers":         "philadelphia 76ers",
	"sixers":        "philadelphia 76ers",
	"bucks":         "milwaukee bucks",
	"heat":          "miami heat",
	"bulls":         "chicago bulls",
	"suns":          "phoenix suns",
	"mavs":          "dallas mavericks",
	"mavericks":     "dallas mavericks",
	"nuggets":       "denver nuggets",
	"clippers":      "la clippers",
	"thunder":       "oklahoma city thunder",
	"cavaliers":     "cleveland cavaliers",
	"cavs":          "cleveland cavaliers",
	"timberwolves":  "minnesota timberwolves",
	"wolves":        "minnesota timberwolves",
	"kings":         "sacramento kings",
	"pelicans":      "new orleans pelicans",
	"hawks":         "atlanta hawks",
	"raptors":       "toronto raptors",
	"pacers":        "indiana pacers",
	"magic":         "orlando magic",
	"spurs":         "san antonio spurs",
	"grizzlies":     "memphis grizzlies",
	"blazers":       "portland trail blazers",
	"trail blazers": "portland trail blazers",
	"hornets":       "charlotte hornets",
	"pistons":       "detroit pistons",
	"rockets":       "houston rockets",
	"jazz":          "utah jazz",
	"wizards":       "washington wizards",
	// NFL
	"chiefs":     "kansas city chiefs",
	"eagles":     "philadelphia eagles",
	"bills":      "buffalo bills",
	"cowboys":    "dallas cowboys",
	"49ers":      "san francisco 49ers",
	"niners":     "san francisco 49ers",
	"ravens":     "baltimore ravens",
	"lions":      "detroit lions",
	"dolphins":   "miami dolphins",
	"bengals":    "cincinnati bengals",
	"packers":    "green bay packers",
	"texans":     "houston texans",
	"steelers":   "pittsburgh steelers",
	"seahawks":   "seattle seahawks",
	"jaguars":    "jacksonville jaguars",
	"vikings":    "minnesota vikings",
	"chargers":   "los angeles chargers",
	"rams":       "los angeles rams",
	"broncos":    "denver broncos",
	"saints":     "new orleans saints",
	"colts":      "indianapolis colts",
	"browns":     "cleveland browns",
	"bears":      "chicago bears",
	"commanders": "washington commanders",
	"panthers":   "carolina panthers",
	"falcons":    "atlanta falcons",
	"raiders":    "las vegas raiders",
	"titans":     "tennessee titans",
	"cardinals":  "arizona cardinals",
	"patriots":   "new england patriots",
	"giants":     "new york giants",
	"jets":       "new york jets",
	"buccaneers": "tampa bay buccaneers",
	"bucs":       "tampa bay buccaneers",
	// NHL
	"bruins":         "boston bruins",
	"maple leafs":    "toronto maple leafs",
	"leafs":          "toronto maple leafs",
	"canadiens":      "montreal canadiens",
	"habs":           "montreal canadiens",
	"red wings":      "detroit red wings",
	"blackhawks":     "chicago blackhawks",
	"penguins":       "pittsburgh penguins",
	"flyers":         "philadelphia flyers",
	"rangers":        "new york rangers",
	"islanders":      "new york islanders",
	"capitals":       "washington capitals",
	"caps":           "washington capitals",
	"lightning":      "tampa bay lightning",
	"avalanche":      "colorado avalanche",
	"oilers":         "edmonton oilers",
	"flames":         "calgary flames",
	"canucks":        "vancouver canucks",
	"sharks":         "san jose sharks",
	"wild":           "minnesota wild",
	"blues":          "st. louis blues",
	"predators":      "nashville predators",
	"preds":          "nashville predators",
	"hurricanes":     "carolina hurricanes",
	"canes":          "carolina hurricanes",
	"stars":          "dallas stars",
	"kraken":         "seattle kraken",
	"golden knights": "vegas golden knights",
	"knights":        "vegas golden knights",
	"ducks":          "anaheim ducks",
	"coyotes":        "arizona coyotes",
	"senators":       "ottawa senators",
	"sens":           "ottawa senators",
	"sabres":         "buffalo sabres",
	"jackets":        "columbus blue jackets",
	"blue jackets":   "columbus blue jackets",
	"devils":         "new jersey devils",
}

// Normalize lower-cases a team name and expands known nicknames
func Normalize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if full, ok := aliases[n]; ok {
		return full
	}
	return n
}

// Match reports whether two team names refer to the same team
func Match(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
