package mediatype

// Grid5000 is the vendor JSON dialect of the Grid'5000 API. Its signatures are
// more specific than "application/*+json", so it wins over JSON when both are
// registered.
func Grid5000() *MediaType {
	signatures := []string{"application/vnd.grid5000+json"}

	for _, kind := range []string{
		"grid", "site", "cluster", "node", "nodeStatus", "version",
		"collection", "timeseries", "versions", "user", "metric",
		"job", "deployment", "notification",
	} {
		signatures = append(signatures, "application/vnd.fr.grid5000.api."+kind+"+json")
	}

	return New(NameGrid5000, jsonParser{}, HypermediaSemantics{}, signatures...)
}
