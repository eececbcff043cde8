package service

import dom "merchantfeed/internal/services/feedimport/domain"

// Catalog holds the command templates the planner picks from
// templates use {param} placeholders filled in by the executor
type Catalog struct {
	Fetch            string
	TarGz            string
	Zip              string
	Gzip             string
	Passthrough      string
	Backup           string
	XML2CSV          string
	BlankLines       string
	Process          string
	ProcessUnmatched string
}

// DefaultCatalog returns templates for the usual toolchain on the import hosts
func DefaultCatalog() Catalog {
	return Catalog{
		Fetch:            "wget --quiet --tries=1 --read-timeout={readTimeout} --user={username} --password={password} --output-document=- {url}",
		TarGz:            "tar --extract --gzip --to-stdout --file=-",
		Zip:              "funzip",
		Gzip:             "funzip",
		Passthrough:      "zgrep --text ''",
		Backup:           "gzip --stdout",
		XML2CSV:          "xml2csv --entity={xmlEntity} --limit={rowsLimitCount}",
		BlankLines:       "sed '/^[[:space:]]*$/d'",
		Process:          "feedimport-process -merchant={merchantid} -stats-id={importStatsId} -variant=primary",
		ProcessUnmatched: "feedimport-process -merchant={merchantid} -stats-id={importStatsId} -variant=unmatched",
	}
}

// merged fills blank templates from the defaults
func (c Catalog) merged() Catalog {
	d := DefaultCatalog()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Catalog{
		Fetch:            pick(c.Fetch, d.Fetch),
		TarGz:            pick(c.TarGz, d.TarGz),
		Zip:              pick(c.Zip, d.Zip),
		Gzip:             pick(c.Gzip, d.Gzip),
		Passthrough:      pick(c.Passthrough, d.Passthrough),
		Backup:           pick(c.Backup, d.Backup),
		XML2CSV:          pick(c.XML2CSV, d.XML2CSV),
		BlankLines:       pick(c.BlankLines, d.BlankLines),
		Process:          pick(c.Process, d.Process),
		ProcessUnmatched: pick(c.ProcessUnmatched, d.ProcessUnmatched),
	}
}

// extractFor returns the template for a resolved compression
func (c Catalog) extractFor(comp dom.Compression) (string, bool) {
	switch comp {
	case dom.CompressionTarGz:
		return c.TarGz, true
	case dom.CompressionZip:
		return c.Zip, true
	case dom.CompressionGzip:
		return c.Gzip, true
	}
	return "", false
}

func strict(cmd string) dom.CommandDefinition {
	return dom.CommandDefinition{Command: cmd, ExitCodes: []int{0}}
}
