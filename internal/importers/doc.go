// Package importers loads catalog fixtures into the store.
//
// A fixture is a YAML document describing languages and the
// Level → Book → Page hierarchy:
//
//	languages:
//	  - code: en
//	    name: English
//	levels:
//	  - name: Beginner
//	    books:
//	      - key: fox
//	        name: The Fox
//	        pages:
//	          - text: Cover
//	            front_cover: true
//	          - text: Once upon a time
//	            text_language: en
//	            translations:
//	              - language: de
//	                text: Es war einmal
//	  - name: Review
//	    books:
//	      - key: fox
//
// A book carrying a key is created once; later entries with the same key
// attach the existing book instead of creating another one. Every write
// goes through the catalog mutator, so cover and ownership rules hold for
// imported data the same way they hold for API writes.
//
// # Example Usage
//
//	fixture, err := importers.ParseCatalog(data)
//	result, err := importers.NewPipeline(catalogService, log).Import(ctx, fixture)
package importers
