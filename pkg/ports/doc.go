/*
Package ports defines the driven ports (interfaces) for schemata.

These interfaces decouple the validation run from external implementations,
allowing reports to be kept in various storage backends and violations to be
forwarded to event brokers.

# Key Interfaces

  - ReportStore: Responsible for persisting and loading run reports.
  - Publisher: Receives one event per failed document.
  - DistributedLocker: Serializes runs over the same dataset across instances.
*/
package ports
