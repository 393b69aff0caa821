// Package chronograph builds temporally-versioned knowledge graphs from
// unstructured text.
//
// Ingestion runs in four stages: statements, entity mentions, and triplets
// are extracted from each chunk; near-duplicate mentions are clustered into
// canonical entities; contradictory facts are resolved into a versioned
// timeline where newer facts invalidate the older ones they supersede; and
// the surviving entities and relationships are assembled into a directed
// multigraph supporting point-in-time queries.
//
// # Basic Usage
//
// Create a client with its collaborators and ingest a batch of chunks:
//
//	// Canonical entities persist across runs
//	canonicals := store.NewMemoryStore()
//
//	// LLM-backed extraction and invalidation judgments
//	chat, err := llm.NewOpenAIClient(apiKey, llm.Config{Model: "gpt-4o-mini"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	ext := extractor.NewLLMExtractor(llm.NewRetryClient(chat, nil))
//	judge := oracle.NewLLMOracle(chat, nil)
//
//	// Statement embeddings gate the invalidation candidate search
//	emb, err := embedder.NewOpenAIClient(apiKey, "", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := chronograph.NewClient(canonicals, canonicals, ext, emb, judge, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Ingest(ctx, chunks)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Querying the Graph
//
// The assembled graph supports point-in-time projection:
//
//	snapshot := result.Graph.ActiveAt(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
//	node, ok := snapshot.FindNodeByName("Lisa Su")
//
// Failures of individual chunks or statements never abort a run; they are
// reported in IngestResult.Skipped alongside the partial results.
package chronograph
