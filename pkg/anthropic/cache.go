package anthropic

// BuildCachedSystemBlocks constructs system content blocks with a cache
// breakpoint. Enrichment sends the same instructions for every record, so
// later requests in a run read the prompt from cache.
func BuildCachedSystemBlocks(text string, ttl string) []SystemBlock {
	if ttl == "" {
		ttl = "5m"
	}
	return []SystemBlock{
		{
			Text: text,
			CacheControl: &CacheControl{
				TTL: ttl,
			},
		},
	}
}
