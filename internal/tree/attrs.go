package tree

// attrFile binds one captured attribute field to the metadata file it
// reconstructs, relative to the device's metadata directory. File names
// follow the sysfs originals the capture read them from.
type attrFile struct {
	Key string // record field name
	Rel string // file under the device metadata dir
}

// Top-level files.
var topAttrs = []attrFile{
	{"SIZE", "size"},
}

// SCSI/ATA device identity, mirroring /sys/block/<dev>/device/.
var deviceAttrs = []attrFile{
	{"ID_MODEL", "device/model"},
	{"ID_VENDOR", "device/vendor"},
	{"DEVICE_STATE", "device/state"},
	{"ID_SERIAL_SHORT", "device/serial"},
	{"ID_TYPE", "device/type"},
	{"ID_REVISION", "device/rev"},
	{"ID_WWN", "device/wwid"},
}

// Request-queue parameters, mirroring /sys/block/<dev>/queue/.
var queueAttrs = []attrFile{
	{"QUEUE_DISCARD_GRANULARITY", "queue/discard_granularity"},
	{"QUEUE_DISCARD_MAX_BYTES", "queue/discard_max_bytes"},
	{"QUEUE_SCHEDULER", "queue/scheduler"},
	{"QUEUE_NR_REQUESTS", "queue/nr_requests"},
	{"QUEUE_LOGICAL_BLOCK_SIZE", "queue/logical_block_size"},
	{"QUEUE_PHYSICAL_BLOCK_SIZE", "queue/physical_block_size"},
	{"QUEUE_MINIMUM_IO_SIZE", "queue/minimum_io_size"},
	{"QUEUE_OPTIMAL_IO_SIZE", "queue/optimal_io_size"},
	{"QUEUE_ALIGNMENT_OFFSET", "queue/alignment_offset"},
	{"QUEUE_ROTATIONAL", "queue/rotational"},
	{"QUEUE_ZONED", "queue/zoned"},
	{"QUEUE_READ_AHEAD_KB", "queue/read_ahead_kb"},
}

// Device-mapper identity, mirroring /sys/block/dm-N/dm/.
var dmAttrs = []attrFile{
	{"DM_NAME", "dm/name"},
	{"DM_UUID", "dm/uuid"},
	{"DM_SUSPENDED", "dm/suspended"},
}

// MD RAID.
var mdAttrs = []attrFile{
	{"MD_LEVEL", "md/level"},
}

// Supplementary fields, written only under extended capture.
var extraAttrs = []attrFile{
	{"ID_FS_LABEL", "EXTRA/fs_label"},
	{"ID_FS_UUID", "EXTRA/fs_uuid"},
	{"MOUNT_POINT", "EXTRA/mountpoint"},
	{"ID_PART_TABLE_TYPE", "EXTRA/pttype"},
	{"NVME_NQN", "EXTRA/nvme_nqn"},
	{"NVME_TRTYPE", "EXTRA/nvme_transport"},
	{"FC_PORT_NAME", "EXTRA/fc_port_name"},
	{"FC_NODE_NAME", "EXTRA/fc_node_name"},
	{"SCSI_HOST", "EXTRA/scsi_host"},
}

// Device-mapper internals, extended capture and dm devices only.
var dmExtraAttrs = []attrFile{
	{"DM_TABLE", "EXTRA/dm/table"},
	{"DM_ACTIVATION", "EXTRA/dm/activation"},
	{"DM_OPEN_COUNT", "EXTRA/dm/open_count"},
	{"DM_LV_LAYER", "EXTRA/dm/lv_layer"},
}
