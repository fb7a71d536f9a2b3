package tools

import "context"

// pathField is the required sandboxed path parameter most filesystem and
// repository operations share.
func pathField(doc string) Field {
	return Field{Name: "path", Kind: KindString, Required: true, Path: true, Doc: doc}
}

// RegisterAll populates the registry with every operation of the four
// portmanteau tools. Called once at startup; a registration error is a
// programming mistake and aborts the server.
func RegisterAll(reg *Registry) error {
	register := func(category string, ops []*Operation) error {
		for _, op := range ops {
			if err := reg.Register(category, op); err != nil {
				return err
			}
		}
		return nil
	}

	if err := register(CategoryFilesystem, filesystemOps()); err != nil {
		return err
	}
	if err := register(CategoryRepository, repositoryOps()); err != nil {
		return err
	}
	if err := register(CategoryDocker, dockerOps()); err != nil {
		return err
	}
	return register(CategorySystem, systemOps(reg))
}

func filesystemOps() []*Operation {
	return []*Operation{
		{
			Name:    "read_file",
			Summary: "Read a file's full content",
			Params:  ParamSpec{Fields: []Field{pathField("File to read")}},
			Handler: handleReadFile,
		},
		{
			Name:    "write_file",
			Summary: "Write content to a file, optionally backing up the previous version",
			Params: ParamSpec{Fields: []Field{
				pathField("File to write"),
				{Name: "content", Kind: KindString, Required: true, Doc: "Content to write"},
				{Name: "backup", Kind: KindBool, Default: false, Doc: "Back up an existing file to <path>.bak first"},
				{Name: "create_parents", Kind: KindBool, Default: false, Doc: "Create missing parent directories"},
			}},
			Handler: handleWriteFile,
		},
		{
			Name:    "edit_file",
			Summary: "Replace a unique text occurrence in a file",
			Params: ParamSpec{Fields: []Field{
				pathField("File to edit"),
				{Name: "old_text", Kind: KindString, Required: true, Doc: "Exact text to replace, must occur once"},
				{Name: "new_text", Kind: KindString, Required: true, Doc: "Replacement text"},
				{Name: "backup", Kind: KindBool, Default: false, Doc: "Back up the file to <path>.bak first"},
			}},
			Handler: handleEditFile,
		},
		{
			Name:    "move_file",
			Summary: "Move or rename a file or directory",
			Params: ParamSpec{Fields: []Field{
				{Name: "source", Kind: KindString, Required: true, Path: true, Doc: "Path to move from"},
				{Name: "destination", Kind: KindString, Required: true, Path: true, Doc: "Path to move to"},
				{Name: "overwrite", Kind: KindBool, Default: false, Doc: "Replace an existing destination"},
			}},
			Handler: handleMoveFile,
		},
		{
			Name:    "read_file_lines",
			Summary: "Read a line range of a file",
			Params: ParamSpec{Fields: []Field{
				pathField("File to read"),
				{Name: "offset", Kind: KindInt, Default: 1, Doc: "First line to return (1-based)"},
				{Name: "limit", Kind: KindInt, Default: 100, Doc: "Maximum lines to return"},
			}},
			Handler: handleReadFileLines,
		},
		{
			Name:    "read_multiple_files",
			Summary: "Read several files in one call with per-file results",
			Params: ParamSpec{Fields: []Field{
				{Name: "paths", Kind: KindStrings, Required: true, Path: true, Doc: "Files to read"},
			}},
			Handler: handleReadMultipleFiles,
		},
		{
			Name:    "file_exists",
			Summary: "Check whether a path exists",
			Params:  ParamSpec{Fields: []Field{pathField("Path to check")}},
			Handler: handleFileExists,
		},
		{
			Name:    "get_file_info",
			Summary: "Stat a path: size, mode, timestamps",
			Params:  ParamSpec{Fields: []Field{pathField("Path to stat")}},
			Handler: handleGetFileInfo,
		},
		{
			Name:    "head_file",
			Summary: "Read the first lines of a file",
			Params: ParamSpec{Fields: []Field{
				pathField("File to read"),
				{Name: "limit", Kind: KindInt, Default: 10, Doc: "Lines to return"},
			}},
			Handler: handleHeadFile,
		},
		{
			Name:    "tail_file",
			Summary: "Read the last lines of a file",
			Params: ParamSpec{Fields: []Field{
				pathField("File to read"),
				{Name: "limit", Kind: KindInt, Default: 10, Doc: "Lines to return"},
			}},
			Handler: handleTailFile,
		},
		{
			Name:    "delete_file",
			Summary: "Delete a single file",
			Params: ParamSpec{Fields: []Field{
				pathField("File to delete"),
				{Name: "ignore_missing", Kind: KindBool, Default: false, Doc: "Succeed when the file does not exist"},
			}},
			Handler: handleDeleteFile,
		},
		{
			Name:    "list_directory",
			Summary: "List directory entries",
			Params: ParamSpec{Fields: []Field{
				pathField("Directory to list"),
				{Name: "recursive", Kind: KindBool, Default: false, Doc: "Descend into subdirectories"},
				{Name: "include_hidden", Kind: KindBool, Default: false, Doc: "Include dotfiles"},
			}},
			Handler: handleListDirectory,
		},
		{
			Name:    "create_directory",
			Summary: "Create a directory",
			Params: ParamSpec{Fields: []Field{
				pathField("Directory to create"),
				{Name: "parents", Kind: KindBool, Default: false, Doc: "Create missing parents"},
				{Name: "exist_ok", Kind: KindBool, Default: false, Doc: "Succeed when the directory already exists"},
			}},
			Handler: handleCreateDirectory,
		},
		{
			Name:    "remove_directory",
			Summary: "Remove a directory",
			Params: ParamSpec{Fields: []Field{
				pathField("Directory to remove"),
				{Name: "recursive", Kind: KindBool, Default: false, Doc: "Remove contents too"},
			}},
			Handler: handleRemoveDirectory,
		},
		{
			Name:    "directory_tree",
			Summary: "Render a nested directory tree",
			Params: ParamSpec{Fields: []Field{
				pathField("Root of the tree"),
				{Name: "max_depth", Kind: KindInt, Default: 3, Doc: "Levels to descend"},
			}},
			Handler: handleDirectoryTree,
		},
		{
			Name:    "calculate_directory_size",
			Summary: "Sum the size of a directory's contents",
			Params:  ParamSpec{Fields: []Field{pathField("Directory to measure")}},
			Handler: handleDirectorySize,
		},
		{
			Name:    "grep_file",
			Summary: "Search a file with a regular expression",
			Params: ParamSpec{Fields: []Field{
				pathField("File to search"),
				{Name: "pattern", Kind: KindString, Required: true, Doc: "Regular expression"},
				{Name: "ignore_case", Kind: KindBool, Default: false, Doc: "Case-insensitive match"},
				{Name: "max_matches", Kind: KindInt, Default: 100, Doc: "Maximum matches to return"},
				{Name: "context", Kind: KindInt, Default: 0, Doc: "Context lines around each match"},
			}},
			Handler: handleGrepFile,
		},
		{
			Name:    "search_files",
			Summary: "Find files by glob pattern under a directory",
			Params: ParamSpec{Fields: []Field{
				pathField("Directory to search"),
				{Name: "pattern", Kind: KindString, Required: true, Doc: "Glob matched against entry names"},
				{Name: "include_hidden", Kind: KindBool, Default: false, Doc: "Include dotfiles"},
			}},
			Handler: handleSearchFiles,
		},
		{
			Name:    "count_pattern",
			Summary: "Count regular expression matches in a file",
			Params: ParamSpec{Fields: []Field{
				pathField("File to search"),
				{Name: "pattern", Kind: KindString, Required: true, Doc: "Regular expression"},
				{Name: "ignore_case", Kind: KindBool, Default: false, Doc: "Case-insensitive match"},
			}},
			Handler: handleCountPattern,
		},
		{
			Name:    "compare_files",
			Summary: "Compare two files and report a unified diff",
			Params: ParamSpec{Fields: []Field{
				pathField("First file"),
				{Name: "other", Kind: KindString, Required: true, Path: true, Doc: "Second file"},
			}},
			Handler: handleCompareFiles,
		},
		{
			Name:    "find_duplicate_files",
			Summary: "Find byte-identical files under a directory",
			Params: ParamSpec{Fields: []Field{
				pathField("Directory to scan"),
				{Name: "recursive", Kind: KindBool, Default: true, Doc: "Descend into subdirectories"},
				{Name: "include_hidden", Kind: KindBool, Default: false, Doc: "Include dotfiles"},
				{Name: "min_size", Kind: KindInt, Default: 1, Doc: "Ignore files smaller than this many bytes"},
			}},
			Handler: handleFindDuplicateFiles,
		},
		{
			Name:    "find_large_files",
			Summary: "Find files above a size threshold, largest first",
			Params: ParamSpec{Fields: []Field{
				pathField("Directory to scan"),
				{Name: "min_size", Kind: KindInt, Default: 10 * 1024 * 1024, Doc: "Minimum size in bytes"},
				{Name: "recursive", Kind: KindBool, Default: true, Doc: "Descend into subdirectories"},
				{Name: "include_hidden", Kind: KindBool, Default: false, Doc: "Include dotfiles"},
				{Name: "limit", Kind: KindInt, Default: 100, Doc: "Maximum files to return"},
			}},
			Handler: handleFindLargeFiles,
		},
		{
			Name:    "extract_log_lines",
			Summary: "Filter a log file by pattern, severity and time range",
			Params: ParamSpec{Fields: []Field{
				pathField("Log file to filter"),
				{Name: "pattern", Kind: KindString, Doc: "Keep only lines matching this expression"},
				{Name: "exclude_pattern", Kind: KindString, Doc: "Drop lines matching this expression"},
				{Name: "levels", Kind: KindStrings, Doc: "Keep only these severities (DEBUG, INFO, WARN, ERROR, FATAL, TRACE)"},
				{Name: "exclude_levels", Kind: KindStrings, Doc: "Drop these severities"},
				{Name: "start_time", Kind: KindString, Doc: "Keep timestamped lines at or after this RFC3339 instant"},
				{Name: "end_time", Kind: KindString, Doc: "Keep timestamped lines at or before this RFC3339 instant"},
				{Name: "max_lines", Kind: KindInt, Default: 500, Doc: "Maximum lines to return"},
			}},
			Handler: handleExtractLogLines,
		},
	}
}

func repositoryOps() []*Operation {
	repoPath := func() Field { return pathField("Repository working tree") }
	return []*Operation{
		{
			Name:    "clone_repo",
			Summary: "Clone a remote repository",
			Params: ParamSpec{Fields: []Field{
				{Name: "url", Kind: KindString, Required: true, Doc: "Repository URL"},
				{Name: "path", Kind: KindString, Required: true, Path: true, Doc: "Target directory"},
				{Name: "branch", Kind: KindString, Doc: "Branch to clone (single-branch)"},
				{Name: "depth", Kind: KindInt, Default: 0, Doc: "Shallow clone depth, 0 for full"},
			}},
			Handler: handleCloneRepo,
		},
		{
			Name:    "repo_status",
			Summary: "Working tree status",
			Params:  ParamSpec{Fields: []Field{repoPath()}},
			Handler: handleRepoStatus,
		},
		{
			Name:    "commit_changes",
			Summary: "Stage and commit changes",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "message", Kind: KindString, Required: true, Doc: "Commit message"},
				{Name: "add_all", Kind: KindBool, Default: true, Doc: "Stage every change before committing"},
				{Name: "paths", Kind: KindStrings, Doc: "Specific repo-relative paths to stage instead"},
				{Name: "author_name", Kind: KindString, Doc: "Commit author name"},
				{Name: "author_email", Kind: KindString, Doc: "Commit author email"},
			}},
			Handler: handleCommitChanges,
		},
		{
			Name:    "repo_info",
			Summary: "Repository overview: branch, head, remotes",
			Params:  ParamSpec{Fields: []Field{repoPath()}},
			Handler: handleRepoInfo,
		},
		{
			Name:    "commit_history",
			Summary: "Recent commits, optionally filtered by author",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "max_count", Kind: KindInt, Default: 20, Doc: "Maximum commits to return"},
				{Name: "author", Kind: KindString, Doc: "Author name substring filter"},
			}},
			Handler: handleCommitHistory,
		},
		{
			Name:    "show_commit",
			Summary: "One commit with its file-level stats",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "revision", Kind: KindString, Doc: "Revision to show, HEAD when omitted"},
			}},
			Handler: handleShowCommit,
		},
		{
			Name:    "diff_changes",
			Summary: "Diff two revisions, or the working tree against HEAD",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "from", Kind: KindString, Doc: "Base revision"},
				{Name: "to", Kind: KindString, Doc: "Target revision"},
			}},
			Handler: handleDiffChanges,
		},
		{
			Name:    "file_history",
			Summary: "Commits that touched one file",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "file", Kind: KindString, Required: true, Doc: "Repo-relative file path"},
				{Name: "max_count", Kind: KindInt, Default: 20, Doc: "Maximum commits to return"},
			}},
			Handler: handleFileHistory,
		},
		{
			Name:    "create_branch",
			Summary: "Create a branch, optionally checking it out",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "name", Kind: KindString, Required: true, Doc: "Branch name"},
				{Name: "from", Kind: KindString, Doc: "Start point revision, HEAD when omitted"},
				{Name: "checkout", Kind: KindBool, Default: false, Doc: "Switch to the new branch"},
			}},
			Handler: handleCreateBranch,
		},
		{
			Name:    "switch_branch",
			Summary: "Check out an existing branch",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "name", Kind: KindString, Required: true, Doc: "Branch name"},
				{Name: "force", Kind: KindBool, Default: false, Doc: "Discard uncommitted changes"},
			}},
			Handler: handleSwitchBranch,
		},
		{
			Name:    "delete_branch",
			Summary: "Delete a branch",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "name", Kind: KindString, Required: true, Doc: "Branch name"},
				{Name: "force", Kind: KindBool, Default: false, Doc: "Delete even when unmerged"},
			}},
			Handler: handleDeleteBranch,
		},
		{
			Name:    "list_branches",
			Summary: "Local branches with the current one marked",
			Params:  ParamSpec{Fields: []Field{repoPath()}},
			Handler: handleListBranches,
		},
		{
			Name:    "create_tag",
			Summary: "Create a tag, annotated when a message is given",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "name", Kind: KindString, Required: true, Doc: "Tag name"},
				{Name: "revision", Kind: KindString, Doc: "Target revision, HEAD when omitted"},
				{Name: "message", Kind: KindString, Doc: "Annotation message"},
				{Name: "tagger_name", Kind: KindString, Doc: "Tagger name for annotated tags"},
				{Name: "tagger_email", Kind: KindString, Doc: "Tagger email for annotated tags"},
			}},
			Handler: handleCreateTag,
		},
		{
			Name:    "list_tags",
			Summary: "All tags",
			Params:  ParamSpec{Fields: []Field{repoPath()}},
			Handler: handleListTags,
		},
		{
			Name:    "delete_tag",
			Summary: "Delete a tag",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "name", Kind: KindString, Required: true, Doc: "Tag name"},
			}},
			Handler: handleDeleteTag,
		},
		{
			Name:    "list_remotes",
			Summary: "Configured remotes",
			Params:  ParamSpec{Fields: []Field{repoPath()}},
			Handler: handleListRemotes,
		},
		{
			Name:    "add_remote",
			Summary: "Add a remote",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "name", Kind: KindString, Required: true, Doc: "Remote name"},
				{Name: "url", Kind: KindString, Required: true, Doc: "Remote URL"},
			}},
			Handler: handleAddRemote,
		},
		{
			Name:    "remove_remote",
			Summary: "Remove a remote",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "name", Kind: KindString, Required: true, Doc: "Remote name"},
			}},
			Handler: handleRemoveRemote,
		},
		{
			Name:    "fetch_remote",
			Summary: "Fetch from a remote",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "remote", Kind: KindString, Default: "origin", Doc: "Remote name"},
			}},
			Handler: handleFetchRemote,
		},
		{
			Name:    "push_changes",
			Summary: "Push the current branch to a remote",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "remote", Kind: KindString, Default: "origin", Doc: "Remote name"},
			}},
			Handler: handlePushChanges,
		},
		{
			Name:    "pull_changes",
			Summary: "Pull from a remote into a clean working tree",
			Params: ParamSpec{Fields: []Field{
				repoPath(),
				{Name: "remote", Kind: KindString, Default: "origin", Doc: "Remote name"},
			}},
			Handler: handlePullChanges,
		},
	}
}

func dockerOps() []*Operation {
	containerField := Field{Name: "container", Kind: KindString, Required: true, Doc: "Container name or ID"}
	imageField := Field{Name: "image", Kind: KindString, Required: true, Doc: "Image name or ID"}
	return []*Operation{
		{
			Name:    "list_containers",
			Summary: "List containers",
			Params: ParamSpec{Fields: []Field{
				{Name: "all", Kind: KindBool, Default: false, Doc: "Include stopped containers"},
			}},
			Handler: handleListContainers,
		},
		{
			Name:    "inspect_container",
			Summary: "Detailed container state and configuration",
			Params:  ParamSpec{Fields: []Field{containerField}},
			Handler: handleInspectContainer,
		},
		{
			Name:    "create_container",
			Summary: "Create a container, optionally starting it",
			Params: ParamSpec{Fields: []Field{
				imageField,
				{Name: "name", Kind: KindString, Doc: "Container name"},
				{Name: "command", Kind: KindStrings, Doc: "Command to run"},
				{Name: "env", Kind: KindStrings, Doc: "Environment entries, KEY=value"},
				{Name: "auto_remove", Kind: KindBool, Default: false, Doc: "Remove the container when it exits"},
				{Name: "start", Kind: KindBool, Default: false, Doc: "Start the container after creating it"},
			}},
			Handler: handleCreateContainer,
		},
		{
			Name:    "start_container",
			Summary: "Start a container",
			Params:  ParamSpec{Fields: []Field{containerField}},
			Handler: handleStartContainer,
		},
		{
			Name:    "stop_container",
			Summary: "Stop a container",
			Params: ParamSpec{Fields: []Field{
				containerField,
				{Name: "timeout_seconds", Kind: KindInt, Default: 0, Doc: "Grace period before the kill, 0 for the daemon default"},
			}},
			Handler: handleStopContainer,
		},
		{
			Name:    "restart_container",
			Summary: "Restart a container",
			Params: ParamSpec{Fields: []Field{
				containerField,
				{Name: "timeout_seconds", Kind: KindInt, Default: 0, Doc: "Grace period before the kill, 0 for the daemon default"},
			}},
			Handler: handleRestartContainer,
		},
		{
			Name:    "remove_container",
			Summary: "Remove a container",
			Params: ParamSpec{Fields: []Field{
				containerField,
				{Name: "force", Kind: KindBool, Default: false, Doc: "Remove even when running"},
				{Name: "remove_volumes", Kind: KindBool, Default: false, Doc: "Remove anonymous volumes too"},
			}},
			Handler: handleRemoveContainer,
		},
		{
			Name:    "container_logs",
			Summary: "Recent container output",
			Params: ParamSpec{Fields: []Field{
				containerField,
				{Name: "tail", Kind: KindInt, Default: 100, Doc: "Lines from the end of the log"},
				{Name: "timestamps", Kind: KindBool, Default: false, Doc: "Prefix lines with timestamps"},
			}},
			Handler: handleContainerLogs,
		},
		{
			Name:    "container_stats",
			Summary: "One-shot CPU and memory usage of a container",
			Params:  ParamSpec{Fields: []Field{containerField}},
			Handler: handleContainerStats,
		},
		{
			Name:    "container_exec",
			Summary: "Run a command inside a running container",
			Params: ParamSpec{Fields: []Field{
				containerField,
				{Name: "command", Kind: KindStrings, Required: true, Doc: "Command and arguments"},
				{Name: "env", Kind: KindStrings, Doc: "Extra environment entries, KEY=value"},
				{Name: "working_dir", Kind: KindString, Doc: "Working directory inside the container"},
				{Name: "user", Kind: KindString, Doc: "User to run as"},
			}},
			Handler: handleContainerExec,
		},
		{
			Name:    "list_images",
			Summary: "List images",
			Params: ParamSpec{Fields: []Field{
				{Name: "all", Kind: KindBool, Default: false, Doc: "Include intermediate layers"},
			}},
			Handler: handleListImages,
		},
		{
			Name:    "inspect_image",
			Summary: "Image metadata and configuration",
			Params:  ParamSpec{Fields: []Field{imageField}},
			Handler: handleInspectImage,
		},
		{
			Name:    "pull_image",
			Summary: "Pull an image from a registry",
			Params:  ParamSpec{Fields: []Field{imageField}},
			Handler: handlePullImage,
		},
		{
			Name:    "build_image",
			Summary: "Build an image from a workspace build context",
			Params: ParamSpec{Fields: []Field{
				pathField("Build context directory"),
				{Name: "tag", Kind: KindString, Doc: "Tag for the built image"},
				{Name: "dockerfile", Kind: KindString, Default: "Dockerfile", Doc: "Dockerfile path relative to the context"},
				{Name: "no_cache", Kind: KindBool, Default: false, Doc: "Ignore the build cache"},
				{Name: "pull", Kind: KindBool, Default: false, Doc: "Always pull newer base images"},
			}},
			Handler: handleBuildImage,
		},
		{
			Name:    "remove_image",
			Summary: "Remove an image",
			Params: ParamSpec{Fields: []Field{
				imageField,
				{Name: "force", Kind: KindBool, Default: false, Doc: "Remove even when containers use it"},
			}},
			Handler: handleRemoveImage,
		},
		{
			Name:    "prune_images",
			Summary: "Delete unused images",
			Params: ParamSpec{Fields: []Field{
				{Name: "all", Kind: KindBool, Default: false, Doc: "Prune all unused images, not just dangling ones"},
			}},
			Handler: handlePruneImages,
		},
		{
			Name:    "list_networks",
			Summary: "List networks",
			Params:  ParamSpec{},
			Handler: handleListNetworks,
		},
		{
			Name:    "create_network",
			Summary: "Create a network",
			Params: ParamSpec{Fields: []Field{
				{Name: "name", Kind: KindString, Required: true, Doc: "Network name"},
				{Name: "driver", Kind: KindString, Doc: "Network driver, daemon default when omitted"},
				{Name: "internal", Kind: KindBool, Default: false, Doc: "Restrict external access"},
			}},
			Handler: handleCreateNetwork,
		},
		{
			Name:    "remove_network",
			Summary: "Remove a network",
			Params: ParamSpec{Fields: []Field{
				{Name: "network", Kind: KindString, Required: true, Doc: "Network name or ID"},
			}},
			Handler: handleRemoveNetwork,
		},
		{
			Name:    "list_volumes",
			Summary: "List volumes",
			Params:  ParamSpec{},
			Handler: handleListVolumes,
		},
		{
			Name:    "create_volume",
			Summary: "Create a volume",
			Params: ParamSpec{Fields: []Field{
				{Name: "name", Kind: KindString, Required: true, Doc: "Volume name"},
				{Name: "driver", Kind: KindString, Doc: "Volume driver, daemon default when omitted"},
			}},
			Handler: handleCreateVolume,
		},
		{
			Name:    "remove_volume",
			Summary: "Remove a volume",
			Params: ParamSpec{Fields: []Field{
				{Name: "volume", Kind: KindString, Required: true, Doc: "Volume name"},
				{Name: "force", Kind: KindBool, Default: false, Doc: "Remove even when in use"},
			}},
			Handler: handleRemoveVolume,
		},
	}
}

func systemOps(reg *Registry) []*Operation {
	return []*Operation{
		{
			Name:    "host_info",
			Summary: "Host OS, kernel and uptime",
			Params:  ParamSpec{},
			Handler: handleHostInfo,
		},
		{
			Name:    "cpu_info",
			Summary: "CPU model, core counts and current usage",
			Params:  ParamSpec{},
			Handler: handleCPUInfo,
		},
		{
			Name:    "memory_info",
			Summary: "Memory and swap usage",
			Params:  ParamSpec{},
			Handler: handleMemoryInfo,
		},
		{
			Name:    "disk_usage",
			Summary: "Disk usage of one mount or all partitions",
			Params: ParamSpec{Fields: []Field{
				// Host telemetry, not workspace content, so the mount
				// path is not sandbox-resolved.
				{Name: "path", Kind: KindString, Doc: "Mountpoint to report, all partitions when omitted"},
			}},
			Handler: handleDiskUsage,
		},
		{
			Name:    "network_interfaces",
			Summary: "Network interfaces with addresses",
			Params:  ParamSpec{},
			Handler: handleNetworkInterfaces,
		},
		{
			Name:    "list_processes",
			Summary: "Running processes, filterable and sortable",
			Params: ParamSpec{Fields: []Field{
				{Name: "filter", Kind: KindString, Doc: "Process name substring filter"},
				{Name: "sort", Kind: KindString, Default: "pid", Enum: []string{"pid", "cpu", "memory", "name"}, Doc: "Sort order"},
				{Name: "limit", Kind: KindInt, Default: 25, Doc: "Maximum processes to return"},
			}},
			Handler: handleListProcesses,
		},
		{
			Name:    "resource_usage",
			Summary: "Combined CPU, memory, disk and network snapshot",
			Params:  ParamSpec{},
			Handler: handleResourceUsage,
		},
		{
			Name:    "environment_info",
			Summary: "Runtime and environment variables with credentials masked",
			Params:  ParamSpec{},
			Handler: handleEnvironmentInfo,
		},
		{
			Name:    "current_time",
			Summary: "Current time in UTC and the server's local zone",
			Params:  ParamSpec{},
			Handler: handleCurrentTime,
		},
		{
			Name:    "server_help",
			Summary: "Catalog of every operation the server exposes",
			Params: ParamSpec{Fields: []Field{
				{Name: "category", Kind: KindString, Enum: []string{
					CategoryFilesystem, CategoryRepository, CategoryDocker, CategorySystem,
				}, Doc: "Limit the catalog to one tool"},
			}},
			Handler: func(_ context.Context, _ *Kit, args map[string]any) (any, error) {
				return helpCatalog(reg, stringArg(args, "category")), nil
			},
		},
	}
}
