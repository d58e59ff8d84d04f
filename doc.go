// Package snyk provides a native Go client for the Snyk
// vulnerability-management REST API across its three generations
// (legacy v1, v3, REST).
//
// # Features
//
//   - Service-based architecture for expandability
//   - Modern Go 1.25+ iterators for pagination
//   - Typed errors for precise error handling
//   - Functional options for flexible configuration
//   - Transparent handling of the v1, v3 and REST API families
//
// # Quick Start
//
//	token, err := snyk.TokenFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := snyk.NewClient(
//	    snyk.WithToken(token),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	orgs, err := client.Orgs.All(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for project, err := range orgs[0].Projects().List(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Printf("Project: %s (%s)\n", project.Name, project.Origin)
//	}
//
// # Error Handling
//
// The package uses typed errors that can be inspected with errors.As:
//
//	project, err := orgs[0].Projects().Get(ctx, "invalid-id")
//	if err != nil {
//	    var notFound *snyk.NotFoundError
//	    if errors.As(err, &notFound) {
//	        // Handle not found
//	    }
//	}
//
// # Pagination
//
// Use iterators for automatic pagination:
//
//	// Iterate over all results
//	for project, err := range client.Projects.List(ctx) {
//	    // ...
//	}
//
//	// Collect all results into a slice
//	projects, err := snyk.Collect(client.Projects.List(ctx))
//
//	// Or take just the first few
//	projects, err := snyk.CollectN(client.Projects.List(ctx), 10)
package snyk
