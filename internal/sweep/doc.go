// Package sweep runs independent single-temperature simulations across a
// bounded worker pool and returns their records ordered by temperature.
//
// Every temperature gets its own lattice, generator and accumulator; only
// the scalar [Record] leaves a worker. The seed of each task is derived from
// the base seed and the temperature itself, so a record does not depend on
// input order or on the number of workers.
//
// # Failure policy
//
// A failing temperature never aborts its siblings. [Driver.Run] always
// returns one record per requested temperature; failed records carry Err,
// and the returned error joins every [TaskError].
package sweep
