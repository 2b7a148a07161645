package commands

const (
	_etc = "/usr/local/etc/com.github.driveshare"
	_var = "/usr/local/var/com.github.driveshare"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
)
