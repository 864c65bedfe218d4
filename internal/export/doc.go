// Package export converts a trained gesture model into the layered-model
// format loaded by the browser inference runtime: a model.json document
// (topology plus weights manifest) and one or more binary weight shards.
//
// The pipeline has five stages:
//
//  1. Collect walks the model's layers in declaration order and produces
//     a (spec, buffer) pair per weight tensor, narrowed to float32.
//  2. Pack concatenates the buffers into shard files with no padding;
//     the manifest addresses tensors purely by position.
//  3. Normalize rewrites the model's topology tree from the newer
//     authoring schema into the older schema the runtime understands.
//  4. Rewrite renames tensor paths to the names the runtime's loader
//     will request (model-scope prefix stripping plus recurrent-layer
//     sub-module renaming).
//  5. Assemble combines everything into one document and writes the
//     artifact directory.
//
// The whole export either completes and leaves a self-consistent
// artifact on disk, or fails without advertising a usable one.
package export
