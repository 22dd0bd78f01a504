// Package scraper recovers embedded schedule records from rendered page markup.
//
// The schedule page ships its data as JSON fragments inside the document. The scraper
// locates every discipline-name signature, opens a fixed-size window after it, and
// evaluates a table of field rules against that window. Each rule carries an ordered list
// of alternative patterns; the first that matches wins. Records missing a required field
// are discarded. Window size, rule order, and the team/relay allow-lists are plain
// configuration so they can be tested without live markup.
package scraper
