// Package core provides a small, stable facade over the template scanner's
// internal engine for programs that want the gate without the CLI.
//
// Example:
//
//	res, err := core.Scan(ctx, core.Config{
//		APIKey:       os.Getenv("v1_apikey"),
//		TemplatesDir: "templates",
//		Threshold:    core.Threshold{core.RiskExtreme: 0, core.RiskHigh: 2},
//	})
//	if err != nil { /* handle */ }
//	if !res.Compliant { fmt.Println(res.Message) }
package core
