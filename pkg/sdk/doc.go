// Package beliefgraph embeds the belief graph resolver in Go programs.
//
// A Client loads a trained embedding model once, from a file written by
// `beliefctl train` or from Redis, and hands out independent sessions.
// Each session remembers the concepts it has already shown, so repeated
// queries walk outward through the graph instead of repeating themselves.
//
//	client, _ := beliefgraph.Open(ctx, beliefgraph.WithModelFile("data/model.bgem"))
//	defer client.Close()
//
//	s := client.NewSession()
//	res := s.Resolve("vaccines", 5)
//	fmt.Println(res.Central, res.Suggestions)
//
//	s.Reset() // start over
package beliefgraph
