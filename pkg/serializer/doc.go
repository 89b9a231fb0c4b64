// Package serializer reads and writes JSON and YAML documents.
//
// Writing, for CLI output:
//
//	writer := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	defer writer.Close() // Important: close to release file handles
//	if err := writer.Serialize(ctx, clusters); err != nil {
//		return err
//	}
//
// Reading, for file-backed inventories:
//
//	descriptors, err := serializer.FromFile[[]model.ClusterDescriptor]("inventory.yaml")
//
// For HTTP responses:
//
//	serializer.RespondJSON(w, http.StatusOK, data)
//
// HttpReader fetches remote documents with bounded timeouts and an optional
// bearer token.
package serializer
