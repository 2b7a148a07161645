package commands

const (
	_etc = "/usr/local/etc/driveshare"
	_var = "/usr/local/var/driveshare"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
