// Package save loads game save data into a [topology.Graph].
//
// # Formats
//
// Two encodings are supported, chosen by sniffing the first non-whitespace
// byte of the input (see [Detect]):
//
//   - [JSON]: the structured exporter format. A list of server entries, an
//     object with a "servers" list, or an object wrapping
//     {"servers", "home_server", "current_server"} under "game".
//   - [Legacy]: the line-oriented format written by the game itself. A
//     "count home current" header followed by one record per server.
//
// The JSON format fails as a whole on malformed input. The legacy format is
// read best-effort: unreadable fragments fall back to defaults or are
// dropped, and each such decision is reported as a [topology.Warning].
//
// # Usage
//
//	res, err := save.ReadFile("save.json")
//	if err != nil {
//	    var pe *save.ParseError
//	    if errors.As(err, &pe) {
//	        // pe.Line, pe.Column, pe.Path locate the problem
//	    }
//	    return err
//	}
//	g := res.Graph // frozen, dangling links already dropped
//	for _, w := range res.Warnings {
//	    log.Warn(w.String())
//	}
//
// Loading has no side effects beyond reading the given input and never
// returns a partial graph together with an error.
package save
