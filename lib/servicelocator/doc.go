// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package servicelocator registers g-cli's listening port with the
// National Instruments Service Locator, the local HTTP service LabVIEW
// queries at startup to find out which port to connect back to.
//
// The locator stores an arbitrary canned HTTP response under a name and
// replays it to whoever asks for that name. [Client.Register] publishes a
// response whose body is "Port=<port>" under an identifier derived from
// the VI path and the LabVIEW version ([RegistrationID]), so two g-cli
// runs of different VIs or LabVIEW versions never collide. The returned
// [Registration] is withdrawn once the application has connected.
//
// The locator may still be starting when g-cli runs, so connection
// failures are retried with exponential backoff for a bounded time. An
// HTTP status above 299 is not retried and surfaces as a
// [*ResponseError].
package servicelocator
