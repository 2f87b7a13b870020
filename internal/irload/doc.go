// Package irload resolves application documents and generated-code
// directories at the process boundary. Documents are CUE; they are
// decoded into the ir package's types and validated before anything
// downstream sees them. Generated code is read into immutable snapshots.
package irload
