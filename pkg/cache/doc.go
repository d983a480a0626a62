// Package cache stores rendered artifacts keyed by the parameters that
// produced them.
//
// Three backends implement [Cache]: [NullCache] disables caching,
// [FileCache] keeps entries under a local directory for the CLI, and
// [RedisCache] shares entries between server instances. Keys come from a
// [Keyer], which hashes the fractal parameters together with the output
// options so that any change to either yields a new key.
package cache
