package schedule

// Codes translates short venue and NOC codes into display names. Unknown codes pass
// through unchanged.
type Codes struct {
	Venues    map[string]string
	Countries map[string]string
}

// Venue returns the display name for a venue code
func (c Codes) Venue(code string) string {
	if name, ok := c.Venues[code]; ok {
		return name
	}
	return code
}

// Country returns the display name for a NOC code
func (c Codes) Country(code string) string {
	if name, ok := c.Countries[code]; ok {
		return name
	}
	return code
}

// DefaultCodes returns fresh copies of the Milano Cortina venue table and the NOC table.
func DefaultCodes() Codes {
	return Codes{
		Venues: map[string]string{
			"CCU": "Milano",
			"SSC": "Cortina",
			"CSC": "Cortina",
			"PSJ": "Cortina",
			"LSP": "Livigno",
			"BFS": "Bormio",
			"ANS": "Anterselva",
			"MSI": "Milano",
			"IHM": "Milano",
			"SSL": "Milano",
		},
		Countries: map[string]string{
			"GER": "Germany",
			"KOR": "Korea",
			"NOR": "Norway",
			"CZE": "Czechia",
			"SUI": "Switzerland",
			"UKR": "Ukraine",
			"EST": "Estonia",
			"SWE": "Sweden",
			"USA": "United States",
			"CAN": "Canada",
			"GBR": "Great Britain",
			"ITA": "Italy",
			"FRA": "France",
			"AUT": "Austria",
			"SLO": "Slovenia",
			"JPN": "Japan",
			"CHN": "China",
			"NZL": "New Zealand",
			"AUS": "Australia",
			"FIN": "Finland",
			"RUS": "ROC",
			"KAZ": "Kazakhstan",
			"POL": "Poland",
			"BLR": "Belarus",
			"LAT": "Latvia",
			"LTU": "Lithuania",
			"DEN": "Denmark",
			"NED": "Netherlands",
			"BEL": "Belgium",
			"IRL": "Ireland",
			"ESP": "Spain",
			"POR": "Portugal",
			"BRA": "Brazil",
			"ARG": "Argentina",
			"MEX": "Mexico",
			"RSA": "South Africa",
			"PHI": "Philippines",
			"TPE": "Chinese Taipei",
			"HKG": "Hong Kong",
			"INA": "Indonesia",
			"MAS": "Malaysia",
			"SIN": "Singapore",
			"THA": "Thailand",
			"VIE": "Vietnam",
			"IND": "India",
			"PAK": "Pakistan",
			"BGD": "Bangladesh",
			"SRI": "Sri Lanka",
			"NEP": "Nepal",
			"MGL": "Mongolia",
			"QAT": "Qatar",
			"UAE": "UAE",
			"KSA": "Saudi Arabia",
			"TUR": "Turkey",
			"ISR": "Israel",
			"EGY": "Egypt",
			"MAR": "Morocco",
			"TUN": "Tunisia",
			"ALG": "Algeria",
			"NGA": "Nigeria",
			"GHA": "Ghana",
			"SEN": "Senegal",
			"CAM": "Cambodia",
			"JOR": "Jordan",
			"LBN": "Lebanon",
			"SYR": "Syria",
			"IRQ": "Iraq",
			"KUW": "Kuwait",
			"OMA": "Oman",
			"BHR": "Bahrain",
			"ISL": "Iceland",
			"LUX": "Luxembourg",
			"MON": "Monaco",
			"AND": "Andorra",
			"SMR": "San Marino",
			"MLT": "Malta",
			"CYP": "Cyprus",
			"ARM": "Armenia",
			"GEO": "Georgia",
			"AZE": "Azerbaijan",
			"KOS": "Kosovo",
			"MKD": "North Macedonia",
			"ALB": "Albania",
			"BIH": "Bosnia",
			"MNE": "Montenegro",
			"SRB": "Serbia",
			"CRO": "Croatia",
			"SVK": "Slovakia",
			"BUL": "Bulgaria",
			"ROM": "Romania",
			"HUN": "Hungary",
		},
	}
}
