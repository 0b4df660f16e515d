// Package ai defines the vendor-neutral vocabulary shared by every layer of
// aitask: the closed set of [ProviderID] values, content [Modality] values,
// [Usage] counters, and the [ChatStream] iterator that streaming executors
// produce.
//
// Nothing in this package performs I/O. Executors translate these types to
// and from their own wire formats.
package ai
