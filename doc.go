/*
Package driveshare grants read access to Google Drive folders for a roster of
participants kept in a Google Sheets worksheet.

driveshare can be used from the command line but is really intended to be run
from a cron job: each pass re-reads the roster, resolves each participant to
their Drive folder, grants the participant read access if it is missing and
records the outcome back into the worksheet, which doubles as the durable
cross-run state.

driveshare supports the following commands:

  - share, to process the roster and grant folder read access to each participant
  - version, to display the application version

Multiple independent workers can process the same roster concurrently by
running with disjoint --shard/--shards settings - the deterministic shard
assignment partitions the roster without any cross-worker coordination.
*/
package driveshare
