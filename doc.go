/*Package sluice is a small library for building and running pipelines over
keyed collections.

A pipeline is constructed as a deferred graph: transforms like ElementwiseMap,
GroupByKey, Union and PerKeyReduce describe the computation without running
it, and Materialize evaluates the graph in-process. The centerpiece is
CoGroupByKey, which joins any number of keyed collections into one collection
mapping each key to the values it carried in every input.

Sluice is intended for moderately sized, computationally inexpensive work such
as joining and deduplicating datasets before further processing. It makes no
claims about distributed execution; the evaluator runs locally with bounded
parallelism.
*/
package sluice
