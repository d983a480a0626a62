// Package view saves and restores explorer state.
//
// A [View] is a named pair of [Record]s, Mandelbrot first and Julia second,
// as produced by [fractal.Explorer.Export]. Records hold the parameter
// field set plus the colour scheme and encode to TOML, JSON and BSON.
//
// Views are kept in a [Store]. [FileStore] writes one TOML file per view
// under ~/.config/fractalview/views; [MongoStore] keeps them in a MongoDB
// collection for the server.
package view
