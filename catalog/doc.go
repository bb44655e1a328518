// Package catalog records which partitions make up a dataset.
//
// A catalog entry names one partition blob together with its format, point
// count and bounding box. Searches use the catalog to enumerate partitions
// without listing the blob store, and the CLI writes one when it generates a
// dataset.
//
// Two implementations are provided: BlobCatalog keeps a manifest blob next to
// the partitions, and catalog/dynamo keeps one DynamoDB item per partition.
package catalog
