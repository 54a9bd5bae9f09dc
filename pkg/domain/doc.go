/*
Package domain holds the data model of the conversation engine: the
dialogue graph (DialogTree, DialogNode, DialogChoice), the compiled
condition/effect unions, quest records, session state and lifecycle
events.

Conditions and effects accept two authoring representations: a short
string DSL ("flag.met_before", "context.level>=5", "set_flag.hero_warned")
and a structured object form ({type, key, operator, value}). Both compile
into one tagged union at load time; evaluation and application operate
only on the compiled form. The authored payload is retained verbatim so
trees serialize back exactly as written.
*/
package domain
