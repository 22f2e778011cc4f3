// Package portal provides the view models of a portfolio management portal
// whose business logic lives entirely behind a JSON backend.
//
// The core functionalities include:
//   - Navigation: a Controller that resets all state and destroys every chart
//     before each view transition, and discards responses superseded by a
//     newer navigation.
//   - Tables: order-preserving rows, search, CSV export and a summary per
//     table kind (investors, allocations, market data, models, AI rebalancing).
//   - Dashboard: allocation drift detection, recommendations and chart specs.
//   - Rebalancing: the guided scenario flow and the custom sell/buy flow, with
//     exact money arithmetic.
//   - Coaching: the behavioral questionnaire and its implementation cadences.
//
// Nothing here renders: the renderer and web packages project these models
// onto markdown, text and HTML, and the api package implements Source.
package portal
